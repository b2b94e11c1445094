package database

import (
	"fmt"
	"strings"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
)

// Assignment is one field to set in a partial update.
type Assignment struct {
	Field string
	Value interface{}
}

// PartialUpdate is the SET clause of an UPDATE statement together with the
// values bound to its placeholders.
type PartialUpdate struct {
	SetCols string
	Values  []interface{}
}

// NextPlaceholder returns the placeholder following the SET values, for use
// in the WHERE clause.
func (p PartialUpdate) NextPlaceholder() string {
	return fmt.Sprintf("$%d", len(p.Values)+1)
}

// SQLForPartialUpdate builds the SET clause for the given assignments, in
// order. columns maps field names to column names; fields missing from it
// are used as the column name verbatim.
//
//	[{firstName, "Aliya"}, {age, 32}] => `"first_name"=$1, "age"=$2`, ["Aliya", 32]
func SQLForPartialUpdate(data []Assignment, columns map[string]string) (PartialUpdate, error) {
	if len(data) == 0 {
		return PartialUpdate{}, apperror.BadRequest("No data")
	}

	cols := make([]string, 0, len(data))
	values := make([]interface{}, 0, len(data))
	for i, a := range data {
		col, ok := columns[a.Field]
		if !ok {
			col = a.Field
		}
		cols = append(cols, fmt.Sprintf(`"%s"=$%d`, col, i+1))
		values = append(values, a.Value)
	}

	return PartialUpdate{
		SetCols: strings.Join(cols, ", "),
		Values:  values,
	}, nil
}
