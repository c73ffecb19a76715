package table_test

import (
	"errors"
	"testing"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func makePeople(t *testing.T) *tb.Frame {
	t.Helper()
	s := tb.Schema{Columns: []tb.ColumnSchema{
		{Name: "name", Type: tb.KindString, Nullable: true},
		{Name: "age", Type: tb.KindInt, Nullable: true},
		{Name: "score", Type: tb.KindFloat, Nullable: true},
	}}
	f := tb.NewFrame(s)
	rows := [][]any{
		{"ann", int64(31), 1.5},
		{"bob", nil, 2.0},
		{"cid", int64(25), nil},
	}
	for _, r := range rows {
		if err := f.AppendRow(r...); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestTakeCopiesRows(t *testing.T) {
	f := makePeople(t)
	out := f.Take([]int{2, 0})
	if out.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Rows())
	}
	v, _ := out.Cell(0, "name")
	if v.String() != "cid" {
		t.Fatalf("expected cid first, got %q", v)
	}
	col, _ := out.ColumnByName("name")
	col.(*tb.StringColumn).Set(0, "zed")
	orig, _ := f.Cell(2, "name")
	if orig.String() != "cid" {
		t.Fatalf("take aliased the source frame, got %q", orig)
	}
}

func TestDropIgnoresUnknown(t *testing.T) {
	f := makePeople(t)
	out := f.Drop("age", "nope")
	got := out.ColumnNames()
	if len(got) != 2 || got[0] != "name" || got[1] != "score" {
		t.Fatalf("unexpected columns %v", got)
	}
	if f.Cols() != 3 {
		t.Fatal("drop mutated the source frame")
	}
}

func TestRenameColumn(t *testing.T) {
	f := makePeople(t)
	out, err := f.RenameColumn("age", "years")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.ColumnNames(); got[1] != "years" {
		t.Fatalf("rename kept position wrong: %v", got)
	}
	if !f.HasColumn("age") {
		t.Fatal("rename mutated the source frame")
	}

	same, err := f.RenameColumn("missing", "x")
	if err != nil {
		t.Fatal(err)
	}
	if same.Cols() != 3 || same.Rows() != 3 {
		t.Fatal("rename of a missing column changed the frame")
	}

	if _, err := f.RenameColumn("age", "name"); !errors.Is(err, tb.ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}

func TestCellNulls(t *testing.T) {
	f := makePeople(t)
	v, err := f.Cell(1, "age")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNull() || v.String() != tb.NullText {
		t.Fatalf("expected null, got %v", v)
	}
	if _, err := f.Cell(0, "nope"); !errors.Is(err, tb.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestInferKinds(t *testing.T) {
	rows := [][]string{
		{"1", "1.5", "x", "true", ""},
		{"2", "3", "y", "false", ""},
	}
	got := tb.InferKinds(rows)
	want := []tb.Kind{tb.KindInt, tb.KindFloat, tb.KindString, tb.KindBool, tb.KindString}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSetCellRefusesFractionInIntColumn(t *testing.T) {
	f := makePeople(t)
	if err := f.SetCell(0, "age", 30.5); err == nil {
		t.Fatal("fraction stored into an int column")
	}
	if err := f.SetCell(0, "age", float64(40)); err != nil {
		t.Fatal(err)
	}
	v, _ := f.Cell(0, "age")
	if !tb.Equal(v, tb.Int(40)) {
		t.Fatalf("expected 40, got %v", v)
	}
}

func TestSetCellTextWidensAndRejects(t *testing.T) {
	f := makePeople(t)
	before := f.Schema()

	if !f.SetCellText(2, "age", " 30.5 ") {
		t.Fatal("fraction was rejected")
	}
	if f.Schema().Columns[1].Type != tb.KindFloat {
		t.Fatalf("age not widened: %s", f.Schema().Columns[1].Type)
	}
	if before.Columns[1].Type != tb.KindInt {
		t.Fatal("widening changed a schema already handed out")
	}
	if got := tb.Widened(before, f.Schema()); len(got) != 1 || got[0] != "age" {
		t.Fatalf("unexpected widened columns %v", got)
	}
	for row, want := range []string{"31", "null", "30.5"} {
		v, _ := f.Cell(row, "age")
		if v.String() != want {
			t.Fatalf("row %d: expected %s, got %v", row, want, v)
		}
	}

	if f.SetCellText(0, "score", "abc") {
		t.Fatal("text accepted into a float column")
	}
	if v, _ := f.Cell(0, "score"); !v.IsNull() {
		t.Fatalf("rejected cell should be null, got %v", v)
	}
	if !f.SetCellText(1, "score", "") {
		t.Fatal("empty text should store null")
	}
	if err := f.WidenToFloat("name"); err == nil {
		t.Fatal("widened a string column")
	}
}
