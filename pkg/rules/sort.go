package rules

import (
	"fmt"
	"sort"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Sort orders rows by one column. The sort is stable in both directions and
// null and NaN cells always sort last.
type Sort struct {
	column    string
	ascending bool
}

func NewSort(column string, ascending bool) Sort {
	return Sort{column: column, ascending: ascending}
}

func (r Sort) Column() string  { return r.column }
func (r Sort) Ascending() bool { return r.ascending }
func (Sort) Type() Type        { return TypeSort }
func (Sort) isRule()           {}

func (r Sort) Describe() string {
	order := "ascending"
	if !r.ascending {
		order = "descending"
	}
	return fmt.Sprintf("sort: %s (%s)", r.column, order)
}

func (r Sort) Record() Record {
	return Record{
		"type":      string(TypeSort),
		"column":    r.column,
		"ascending": r.ascending,
	}
}

func (r Sort) Apply(f *tb.Frame) (*tb.Frame, error) {
	col, ok := f.ColumnByName(r.column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, r.column)
	}
	rows := make([]int, col.Len())
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := col.Value(rows[i]), col.Value(rows[j])
		if missing(a) || missing(b) {
			return !missing(a) && missing(b)
		}
		c, _ := tb.Compare(a, b)
		if r.ascending {
			return c < 0
		}
		return c > 0
	})
	return f.Take(rows), nil
}

func missing(v tb.Value) bool { return v.IsNull() || v.IsNaN() }
