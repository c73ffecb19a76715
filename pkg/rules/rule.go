// Package rules defines the declarative transformation rules of a pipeline
// and the factory that builds them from rule records.
//
// Rule is a closed set of variants: Filter, DropColumn, Sort, Rename and
// ConditionGroup. Variants are immutable values; editing a rule means
// constructing a replacement. Every variant is pure: Apply returns a new
// table and never mutates its input.
package rules

import (
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Type is the discriminant stored under "type" in a rule record.
type Type string

const (
	TypeFilter         Type = "filter"
	TypeDropColumn     Type = "drop_column"
	TypeSort           Type = "sort"
	TypeRename         Type = "rename"
	TypeConditionGroup Type = "ConditionGroupRule"
)

// Rule is a single transformation step over a table.
type Rule interface {
	Type() Type
	// Apply returns the transformed table. The input is never modified.
	Apply(f *tb.Frame) (*tb.Frame, error)
	// Describe returns a deterministic human-readable summary.
	Describe() string
	// Record returns the serializable form of the rule.
	Record() Record

	isRule()
}

// Record is the serialized form of a rule: a "type" tag plus type-specific fields.
type Record map[string]any

// Type returns the record's "type" tag, or "" when absent or not a string.
func (r Record) Type() Type {
	s, _ := r["type"].(string)
	return Type(s)
}

var (
	_ Rule = Filter{}
	_ Rule = DropColumn{}
	_ Rule = Sort{}
	_ Rule = Rename{}
	_ Rule = ConditionGroup{}
)
