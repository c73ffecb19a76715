package rules

import (
	"strings"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// DropColumn removes the named columns. Names missing from the table are ignored.
type DropColumn struct {
	columns []string
}

// NewDropColumn builds a DropColumn. Duplicate names are collapsed, keeping
// the first occurrence.
func NewDropColumn(columns ...string) DropColumn {
	seen := make(map[string]struct{}, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return DropColumn{columns: out}
}

// Columns returns a copy of the column list.
func (r DropColumn) Columns() []string { return append([]string(nil), r.columns...) }
func (DropColumn) Type() Type          { return TypeDropColumn }
func (DropColumn) isRule()             {}

func (r DropColumn) Describe() string {
	return "drop columns: " + strings.Join(r.columns, ", ")
}

func (r DropColumn) Record() Record {
	return Record{
		"type":    string(TypeDropColumn),
		"columns": r.Columns(),
	}
}

func (r DropColumn) Apply(f *tb.Frame) (*tb.Frame, error) {
	return f.Drop(r.columns...), nil
}
