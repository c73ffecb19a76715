package rules

import (
	"fmt"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Create builds the rule described by rec, dispatching on its "type" tag.
// It is the only place that knows every variant; adding a rule kind means
// adding a case here.
func Create(rec Record) (Rule, error) {
	var (
		r   Rule
		err error
	)
	switch t := rec.Type(); t {
	case TypeFilter:
		r, err = createFilter(rec)
	case TypeDropColumn:
		r, err = createDropColumn(rec)
	case TypeSort:
		r, err = createSort(rec)
	case TypeRename:
		r, err = createRename(rec)
	case TypeConditionGroup:
		r, err = createConditionGroup(rec)
	default:
		if raw, ok := rec["type"]; ok && t == "" {
			return nil, &UnknownRuleTypeError{Type: fmt.Sprint(raw)}
		}
		return nil, &UnknownRuleTypeError{Type: string(t)}
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateAll builds a pipeline from records. Either every record is built or
// an error naming the failing record is returned.
func CreateAll(recs []Record) (Pipeline, error) {
	out := make(Pipeline, 0, len(recs))
	for i, rec := range recs {
		r, err := Create(rec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func createFilter(rec Record) (Filter, error) {
	column, err := requireString(rec, TypeFilter, "column")
	if err != nil {
		return Filter{}, err
	}
	op, err := requireString(rec, TypeFilter, "operator")
	if err != nil {
		return Filter{}, err
	}
	raw, ok := rec["value"]
	if !ok {
		return Filter{}, recordErr(TypeFilter, "value", "missing")
	}
	v, err := tb.ValueOf(raw)
	if err != nil {
		return Filter{}, &RecordError{Type: TypeFilter, Field: "value", Err: err}
	}
	return NewFilter(column, Operator(op), v)
}

func createDropColumn(rec Record) (DropColumn, error) {
	raw, ok := rec["columns"]
	if !ok {
		return DropColumn{}, recordErr(TypeDropColumn, "columns", "missing")
	}
	var cols []string
	switch t := raw.(type) {
	case []string:
		cols = t
	case []any:
		for _, c := range t {
			s, ok := c.(string)
			if !ok {
				return DropColumn{}, recordErr(TypeDropColumn, "columns", fmt.Sprintf("expected string, got %T", c))
			}
			cols = append(cols, s)
		}
	default:
		return DropColumn{}, recordErr(TypeDropColumn, "columns", fmt.Sprintf("expected list of strings, got %T", raw))
	}
	if len(cols) == 0 {
		return DropColumn{}, recordErr(TypeDropColumn, "columns", "empty")
	}
	return NewDropColumn(cols...), nil
}

func createSort(rec Record) (Sort, error) {
	column, err := requireString(rec, TypeSort, "column")
	if err != nil {
		return Sort{}, err
	}
	ascending := true
	if raw, ok := rec["ascending"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return Sort{}, recordErr(TypeSort, "ascending", fmt.Sprintf("expected bool, got %T", raw))
		}
		ascending = b
	}
	return NewSort(column, ascending), nil
}

func createRename(rec Record) (Rename, error) {
	oldName, err := requireString(rec, TypeRename, "old_name")
	if err != nil {
		return Rename{}, err
	}
	newName, err := requireString(rec, TypeRename, "new_name")
	if err != nil {
		return Rename{}, err
	}
	return NewRename(oldName, newName), nil
}

func createConditionGroup(rec Record) (ConditionGroup, error) {
	op := GroupAnd
	if raw, ok := rec["operator"]; ok {
		s, ok := raw.(string)
		if !ok {
			return ConditionGroup{}, recordErr(TypeConditionGroup, "operator", fmt.Sprintf("expected string, got %T", raw))
		}
		op = GroupOperator(s)
	}
	members, err := memberRecords(rec["rules"])
	if err != nil {
		return ConditionGroup{}, err
	}
	filters := make([]Filter, 0, len(members))
	for i, m := range members {
		if m.Type() != TypeFilter {
			return ConditionGroup{}, recordErr(TypeConditionGroup, "rules", fmt.Sprintf("member %d has type %q, only filter rules may be grouped", i+1, m.Type()))
		}
		r, err := Create(m)
		if err != nil {
			return ConditionGroup{}, fmt.Errorf("condition group member %d: %w", i+1, err)
		}
		filters = append(filters, r.(Filter))
	}
	return NewConditionGroup(op, filters...)
}

// memberRecords accepts the nested rule list in the shapes produced by
// Record() and by the JSON, YAML and TOML decoders.
func memberRecords(raw any) ([]Record, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []Record:
		return t, nil
	case []map[string]any:
		out := make([]Record, len(t))
		for i, m := range t {
			out[i] = Record(m)
		}
		return out, nil
	case []any:
		out := make([]Record, 0, len(t))
		for i, m := range t {
			rec, ok := asRecord(m)
			if !ok {
				return nil, recordErr(TypeConditionGroup, "rules", fmt.Sprintf("member %d is %T, not a rule record", i+1, m))
			}
			out = append(out, rec)
		}
		return out, nil
	default:
		return nil, recordErr(TypeConditionGroup, "rules", fmt.Sprintf("expected list of rule records, got %T", raw))
	}
}

func asRecord(x any) (Record, bool) {
	switch m := x.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

// AsRecord converts a decoded document element into a Record.
func AsRecord(x any) (Record, bool) { return asRecord(x) }

func requireString(rec Record, t Type, field string) (string, error) {
	raw, ok := rec[field]
	if !ok {
		return "", recordErr(t, field, "missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", recordErr(t, field, fmt.Sprintf("expected string, got %T", raw))
	}
	if s == "" {
		return "", recordErr(t, field, "empty")
	}
	return s, nil
}
