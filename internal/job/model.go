package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/database"
)

const (
	FieldTitle         = "title"
	FieldSalary        = "salary"
	FieldEquity        = "equity"
	FieldCompanyHandle = "companyHandle"
)

// updatableFields are the fields a partial update may set, in the order
// they are written to the SET clause.
var updatableFields = []string{FieldTitle, FieldSalary, FieldEquity}

// columns translates field names to jobs column names where they differ.
var columns = map[string]string{
	FieldCompanyHandle: "company_handle",
}

type Job struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Salary        *int    `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

// JobRq is the payload accepted when creating a job.
type JobRq struct {
	Title         string  `json:"title" validate:"required"`
	Salary        *int    `json:"salary" validate:"omitnil,gte=0"`
	Equity        *string `json:"equity" validate:"omitnil,equity"`
	CompanyHandle string  `json:"companyHandle" validate:"required,max=25"`
}

// JobRqUpdate is a partial update. Fields absent from the JSON payload are
// left unchanged, fields set to null are cleared.
type JobRqUpdate struct {
	Title  *string `json:"title" validate:"omitnil,min=1"`
	Salary *int    `json:"salary" validate:"omitnil,gte=0"`
	Equity *string `json:"equity" validate:"omitnil,equity"`

	present map[string]bool
}

// UnmarshalJSON records which fields were sent and rejects any field that
// cannot be updated.
func (u *JobRqUpdate) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var unknown []string
	present := make(map[string]bool, len(raw))
	for k, v := range raw {
		if !isUpdatable(k) {
			unknown = append(unknown, k)
			continue
		}
		if k == FieldTitle && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("field %q cannot be null", k)
		}
		present[k] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown field(s) %s", strings.Join(unknown, ", "))
	}

	type plain JobRqUpdate
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = JobRqUpdate(p)
	u.present = present
	return nil
}

func (u *JobRqUpdate) SetTitle(title string) *JobRqUpdate {
	u.Title = &title
	return u.mark(FieldTitle)
}

// SetSalary sets the salary, nil clears it.
func (u *JobRqUpdate) SetSalary(salary *int) *JobRqUpdate {
	u.Salary = salary
	return u.mark(FieldSalary)
}

// SetEquity sets the equity, nil clears it.
func (u *JobRqUpdate) SetEquity(equity *string) *JobRqUpdate {
	u.Equity = equity
	return u.mark(FieldEquity)
}

func (u *JobRqUpdate) mark(field string) *JobRqUpdate {
	if u.present == nil {
		u.present = map[string]bool{}
	}
	u.present[field] = true
	return u
}

// Assignments lists the fields present in the update in SET clause order.
func (u JobRqUpdate) Assignments() []database.Assignment {
	var out []database.Assignment
	for _, f := range updatableFields {
		if !u.present[f] {
			continue
		}
		var v interface{}
		switch f {
		case FieldTitle:
			if u.Title != nil {
				v = *u.Title
			}
		case FieldSalary:
			if u.Salary != nil {
				v = *u.Salary
			}
		case FieldEquity:
			if u.Equity != nil {
				v = *u.Equity
			}
		}
		out = append(out, database.Assignment{Field: f, Value: v})
	}
	return out
}

func isUpdatable(field string) bool {
	for _, f := range updatableFields {
		if f == field {
			return true
		}
	}
	return false
}
