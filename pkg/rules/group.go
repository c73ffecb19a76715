package rules

import (
	"fmt"
	"strings"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// GroupOperator combines the predicates of a ConditionGroup.
type GroupOperator string

const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// ConditionGroup keeps the rows for which the AND/OR combination of its
// filters' predicates holds. Every predicate is evaluated against the same
// input row. An empty group keeps every row.
type ConditionGroup struct {
	filters  []Filter
	operator GroupOperator
}

func NewConditionGroup(op GroupOperator, filters ...Filter) (ConditionGroup, error) {
	if op != GroupAnd && op != GroupOr {
		return ConditionGroup{}, fmt.Errorf("%w: group operator %q", ErrUnsupportedOperator, string(op))
	}
	return ConditionGroup{filters: append([]Filter(nil), filters...), operator: op}, nil
}

// Filters returns a copy of the member filters.
func (r ConditionGroup) Filters() []Filter        { return append([]Filter(nil), r.filters...) }
func (r ConditionGroup) Operator() GroupOperator { return r.operator }
func (ConditionGroup) Type() Type                { return TypeConditionGroup }
func (ConditionGroup) isRule()                   {}

func (r ConditionGroup) Describe() string {
	parts := make([]string, len(r.filters))
	for i, f := range r.filters {
		parts[i] = f.Describe()
	}
	return fmt.Sprintf("%s: %s", r.operator, strings.Join(parts, " ; "))
}

func (r ConditionGroup) Record() Record {
	members := make([]Record, len(r.filters))
	for i, f := range r.filters {
		members[i] = f.Record()
	}
	return Record{
		"type":     string(TypeConditionGroup),
		"operator": string(r.operator),
		"rules":    members,
	}
}

func (r ConditionGroup) Apply(f *tb.Frame) (*tb.Frame, error) {
	if len(r.filters) == 0 {
		return f.Clone(), nil
	}
	combined := make([]bool, f.Rows())
	for i := range combined {
		combined[i] = r.operator == GroupAnd
	}
	for _, flt := range r.filters {
		mask, err := flt.mask(f)
		if err != nil {
			return nil, err
		}
		for i, ok := range mask {
			if r.operator == GroupAnd {
				combined[i] = combined[i] && ok
			} else {
				combined[i] = combined[i] || ok
			}
		}
	}
	return f.Take(selected(combined)), nil
}
