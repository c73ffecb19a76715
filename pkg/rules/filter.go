package rules

import (
	"fmt"
	"slices"
	"strings"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Operator is a comparison operator of a Filter.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpContains     Operator = "contains"
)

// Operators lists the supported comparison operators in display order.
func Operators() []Operator {
	return []Operator{OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpContains}
}

func (op Operator) valid() bool { return slices.Contains(Operators(), op) }

func operatorList() string {
	ops := Operators()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return strings.Join(out, ", ")
}

// Filter keeps the rows whose column value satisfies "column operator value".
type Filter struct {
	column   string
	operator Operator
	value    tb.Value
}

// NewFilter validates the operator and builds a Filter.
func NewFilter(column string, op Operator, value tb.Value) (Filter, error) {
	if !op.valid() {
		return Filter{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedOperator, string(op), operatorList())
	}
	return Filter{column: column, operator: op, value: value}, nil
}

func (r Filter) Column() string     { return r.column }
func (r Filter) Operator() Operator { return r.operator }
func (r Filter) Value() tb.Value    { return r.value }
func (Filter) Type() Type           { return TypeFilter }
func (Filter) isRule()              {}

func (r Filter) Describe() string {
	return fmt.Sprintf("filter: %s %s %s", r.column, r.operator, r.value)
}

func (r Filter) Record() Record {
	return Record{
		"type":     string(TypeFilter),
		"column":   r.column,
		"operator": string(r.operator),
		"value":    r.value.Interface(),
	}
}

func (r Filter) Apply(f *tb.Frame) (*tb.Frame, error) {
	mask, err := r.mask(f)
	if err != nil {
		return nil, err
	}
	return f.Take(selected(mask)), nil
}

// mask evaluates the predicate for every row of f.
func (r Filter) mask(f *tb.Frame) ([]bool, error) {
	col, ok := f.ColumnByName(r.column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, r.column)
	}
	out := make([]bool, col.Len())
	for i := range out {
		out[i] = r.match(col.Value(i))
	}
	return out, nil
}

func (r Filter) match(cell tb.Value) bool {
	switch r.operator {
	case OpEqual:
		return tb.Equal(cell, r.value)
	case OpNotEqual:
		return !tb.Equal(cell, r.value)
	case OpContains:
		return strings.Contains(cell.String(), r.value.String())
	}
	c, ok := tb.Compare(cell, r.value)
	if !ok {
		return false
	}
	switch r.operator {
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	case OpGreaterEqual:
		return c >= 0
	case OpLessEqual:
		return c <= 0
	}
	return false
}

func selected(mask []bool) []int {
	rows := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			rows = append(rows, i)
		}
	}
	return rows
}
