package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func samplePipeline(t *testing.T) Pipeline {
	t.Helper()
	g, err := NewConditionGroup(GroupOr,
		mustFilter(t, "age", OpLess, tb.Int(26)),
		mustFilter(t, "department", OpEqual, tb.String("Dev")),
	)
	require.NoError(t, err)
	return Pipeline{
		mustFilter(t, "salary", OpGreaterEqual, tb.Float(350.5)),
		NewDropColumn("salary"),
		NewSort("age", false),
		NewRename("name", "fullName"),
		g,
	}
}

func TestRecordRoundTrip(t *testing.T) {
	base := employees(t)
	for _, r := range samplePipeline(t) {
		t.Run(string(r.Type()), func(t *testing.T) {
			rebuilt, err := Create(r.Record())
			require.NoError(t, err)
			assert.Equal(t, r, rebuilt)
			assert.Equal(t, r.Describe(), rebuilt.Describe())

			want, err := r.Apply(base)
			require.NoError(t, err)
			got, err := rebuilt.Apply(base)
			require.NoError(t, err)
			assert.Equal(t, dump(want), dump(got))
		})
	}
}

func TestCreateFromDecodedShapes(t *testing.T) {
	rec := Record{
		"type":     "ConditionGroupRule",
		"operator": "AND",
		"rules": []any{
			map[string]any{"type": "filter", "column": "age", "operator": ">", "value": 26},
			map[string]any{"type": "filter", "column": "department", "operator": "==", "value": "Sales"},
		},
	}
	r, err := Create(rec)
	require.NoError(t, err)
	out, err := r.Apply(employees(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Jiro"}, column(t, out, "name"))

	r, err = Create(Record{"type": "drop_column", "columns": []any{"salary", "age"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"salary", "age"}, r.(DropColumn).Columns())

	r, err = Create(Record{"type": "sort", "column": "age"})
	require.NoError(t, err)
	assert.True(t, r.(Sort).Ascending())

	r, err = Create(Record{"type": "filter", "column": "age", "operator": "==", "value": nil})
	require.NoError(t, err)
	assert.True(t, r.(Filter).Value().IsNull())
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{"unknown type", Record{"type": "pivot"}, ErrUnknownRuleType},
		{"missing type", Record{"column": "age"}, ErrUnknownRuleType},
		{"non-string type", Record{"type": 7}, ErrUnknownRuleType},
		{"filter without column", Record{"type": "filter", "operator": "==", "value": 1}, ErrInvalidRuleRecord},
		{"filter without value", Record{"type": "filter", "column": "age", "operator": "=="}, ErrInvalidRuleRecord},
		{"filter bad operator", Record{"type": "filter", "column": "age", "operator": "like", "value": 1}, ErrUnsupportedOperator},
		{"filter bad value", Record{"type": "filter", "column": "age", "operator": "==", "value": []any{1}}, ErrInvalidRuleRecord},
		{"drop without columns", Record{"type": "drop_column"}, ErrInvalidRuleRecord},
		{"drop empty columns", Record{"type": "drop_column", "columns": []any{}}, ErrInvalidRuleRecord},
		{"drop non-string column", Record{"type": "drop_column", "columns": []any{"a", 2}}, ErrInvalidRuleRecord},
		{"sort non-bool ascending", Record{"type": "sort", "column": "age", "ascending": "yes"}, ErrInvalidRuleRecord},
		{"rename without new name", Record{"type": "rename", "old_name": "a"}, ErrInvalidRuleRecord},
		{"group bad operator", Record{"type": "ConditionGroupRule", "operator": "XOR", "rules": []any{}}, ErrUnsupportedOperator},
		{"group non-filter member", Record{"type": "ConditionGroupRule", "rules": []any{
			map[string]any{"type": "sort", "column": "age"},
		}}, ErrInvalidRuleRecord},
		{"group malformed member", Record{"type": "ConditionGroupRule", "rules": []any{"filter"}}, ErrInvalidRuleRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Create(tt.rec)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnknownRuleTypeNamesTag(t *testing.T) {
	_, err := Create(Record{"type": "pivot"})
	var ute *UnknownRuleTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "pivot", ute.Type)
	assert.Contains(t, err.Error(), "pivot")
}

func TestCreateAllReportsFailingRecord(t *testing.T) {
	_, err := CreateAll([]Record{
		{"type": "sort", "column": "age"},
		{"type": "rename", "old_name": "a"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRuleRecord)
	assert.Contains(t, err.Error(), "rule 2")

	var re *RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "new_name", re.Field)
}

func TestEmployeeScenario(t *testing.T) {
	p, err := CreateAll([]Record{
		{"type": "drop_column", "columns": []any{"salary"}},
		{"type": "filter", "column": "department", "operator": "==", "value": "Sales"},
		{"type": "sort", "column": "age", "ascending": true},
		{"type": "rename", "old_name": "name", "new_name": "fullName"},
	})
	require.NoError(t, err)

	f := employees(t)
	for _, r := range p {
		f, err = r.Apply(f)
		require.NoError(t, err)
	}
	assert.Equal(t, [][]string{
		{"fullName", "age", "department"},
		{"Taro", "25", "Sales"},
		{"Jiro", "28", "Sales"},
	}, dump(f))
}

func TestPipelineEditing(t *testing.T) {
	p := samplePipeline(t)
	orig := append(Pipeline(nil), p...)

	up, err := p.MoveUp(2)
	require.NoError(t, err)
	assert.Equal(t, TypeSort, up[1].Type())
	assert.Equal(t, TypeDropColumn, up[2].Type())
	assert.Equal(t, orig, p)

	first, err := p.MoveUp(0)
	require.NoError(t, err)
	assert.Equal(t, p, first)

	down, err := p.MoveDown(len(p) - 1)
	require.NoError(t, err)
	assert.Equal(t, p, down)

	rm, err := p.Remove(0)
	require.NoError(t, err)
	assert.Len(t, rm, len(p)-1)
	assert.Equal(t, TypeDropColumn, rm[0].Type())

	rep, err := p.Replace(1, NewSort("age", true))
	require.NoError(t, err)
	assert.Equal(t, "sort: age (ascending)", rep[1].Describe())

	_, err = p.Remove(len(p))
	assert.Error(t, err)
	_, err = p.MoveDown(-1)
	assert.Error(t, err)

	assert.Len(t, p.Append(NewRename("a", "b")), len(p)+1)
	assert.Equal(t, orig, p)
}

func TestPrune(t *testing.T) {
	schema := tb.Schema{Columns: []tb.ColumnSchema{{Name: "age", Type: tb.KindInt}}}
	p := Pipeline{
		mustFilter(t, "age", OpGreater, tb.Int(1)),
		mustFilter(t, "department", OpEqual, tb.String("Sales")),
		NewSort("name", true),
		NewDropColumn("salary"),
		NewRename("name", "fullName"),
	}
	kept, skipped := p.Prune(schema)
	assert.Equal(t, []string{"filter: age > 1", "drop columns: salary", "rename: name -> fullName"}, kept.Describe())
	assert.Equal(t, []string{"filter: department == Sales", "sort: name (ascending)"}, skipped.Describe())
}
