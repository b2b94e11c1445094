package job

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
)

const (
	filterTitle     = "title"
	filterMinSalary = "minSalary"
	filterHasEquity = "hasEquity"
)

// Filters narrows a job listing. Nil fields apply no constraint. HasEquity
// only constrains when true: false means "any equity", not "no equity".
type Filters struct {
	Title     *string
	MinSalary *int
	HasEquity *bool
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f.Title == nil && f.MinSalary == nil && f.HasEquity == nil
}

// ParseFiltersFromQuery validates the listing query string. Unknown keys, an
// empty title and a minSalary that is not a non-negative integer are
// rejected, as is one beyond the salary column range. hasEquity is true only for the literal "true".
func ParseFiltersFromQuery(query url.Values) (Filters, error) {
	var f Filters
	var errs []string

	var unknown []string
	for k := range query {
		switch k {
		case filterTitle, filterMinSalary, filterHasEquity:
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs = append(errs, "query is not allowed to have the parameter(s) "+strings.Join(unknown, ", "))
	}

	if _, ok := query[filterTitle]; ok {
		title := query.Get(filterTitle)
		if title == "" {
			errs = append(errs, "query.title must not be empty")
		} else {
			f.Title = &title
		}
	}

	if _, ok := query[filterMinSalary]; ok {
		minSalary, err := strconv.Atoi(strings.TrimSpace(query.Get(filterMinSalary)))
		switch {
		case err != nil:
			errs = append(errs, "query.minSalary is not of a type(s) integer")
		case minSalary < 0:
			errs = append(errs, "query.minSalary must be greater than or equal to 0")
		case minSalary > math.MaxInt32:
			errs = append(errs, "query.minSalary must be less than or equal to 2147483647")
		default:
			f.MinSalary = &minSalary
		}
	}

	if _, ok := query[filterHasEquity]; ok {
		hasEquity := query.Get(filterHasEquity) == "true"
		f.HasEquity = &hasEquity
	}

	if len(errs) > 0 {
		return Filters{}, apperror.Invalid(errs)
	}
	return f, nil
}
