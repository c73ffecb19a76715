package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func TestInferAndRead(t *testing.T) {
	p := filepath.FromSlash("testdata/employees.csv")
	r, f, err := Open(p, ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	schema, names, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if names[0] != "name" {
		t.Fatalf("BOM not stripped from header: %q", names[0])
	}
	want := []tb.Kind{tb.KindString, tb.KindInt, tb.KindString, tb.KindFloat, tb.KindBool}
	for i, k := range want {
		if schema.Columns[i].Type != k {
			t.Fatalf("column %s: expected %s, got %s", schema.Columns[i].Name, k, schema.Columns[i].Type)
		}
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 5 {
		t.Fatalf("expected 5 rows, got %d", fr.Rows())
	}
	v, _ := fr.Cell(3, "age")
	if !v.IsNull() {
		t.Fatalf("expected empty age to be null, got %v", v)
	}
	v, _ = fr.Cell(0, "salary")
	if v.String() != "300.5" {
		t.Fatalf("unexpected salary %v", v)
	}
}

func TestRaggedRecords(t *testing.T) {
	fr, err := ReadFile("testdata/ragged.csv", ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := fr.ColumnNames(); len(got) != 2 || got[1] != "b" {
		t.Fatalf("delimiter not sniffed, columns %v", got)
	}
	if fr.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", fr.Rows())
	}
	v, _ := fr.Cell(2, "b")
	if !v.IsNull() {
		t.Fatalf("short record should pad with null, got %v", v)
	}

	r, c, err := Open("testdata/ragged.csv", ReaderOptions{HasHeader: true, Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadAll(schema); err == nil {
		t.Fatal("strict mode accepted a long record")
	}
}

// lateCells writes 100 rows of age 30 followed by the given ages, so the
// odd cells fall outside the inference sample.
func lateCells(t *testing.T, ages ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("name,age\n")
	for i := 0; i < 100; i++ {
		b.WriteString("p,30\n")
	}
	for _, a := range ages {
		b.WriteString("q," + a + "\n")
	}
	path := filepath.Join(t.TempDir(), "late.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readWithWarnings(t *testing.T, path string, opt ReaderOptions) (*tb.Frame, string, error) {
	t.Helper()
	r, c, err := Open(path, opt)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	fr, err := r.ReadAll(schema)
	return fr, r.Warnings(), err
}

func TestFractionAfterSampleWidensIntColumn(t *testing.T) {
	fr, warn, err := readWithWarnings(t, lateCells(t, "30.5"), ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	if fr.Schema().Columns[1].Type != tb.KindFloat {
		t.Fatalf("age kind %s, want float", fr.Schema().Columns[1].Type)
	}
	v, _ := fr.Cell(100, "age")
	if v.String() != "30.5" {
		t.Fatalf("late cell read back as %v", v)
	}
	if c, ok := tb.Compare(v, tb.Int(30)); !ok || c <= 0 {
		t.Fatalf("30.5 should compare above 30")
	}
	v, _ = fr.Cell(0, "age")
	if !tb.Equal(v, tb.Int(30)) {
		t.Fatalf("widened cell changed value: %v", v)
	}
	if warn != "widened_to_float=age" {
		t.Fatalf("unexpected warnings %q", warn)
	}
}

func TestRejectedCellAfterSample(t *testing.T) {
	path := lateCells(t, "abc", "31")
	fr, warn, err := readWithWarnings(t, path, ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := fr.Cell(100, "age")
	if !v.IsNull() {
		t.Fatalf("rejected cell should be null, got %v", v)
	}
	v, _ = fr.Cell(101, "age")
	if !tb.Equal(v, tb.Int(31)) {
		t.Fatalf("unexpected age %v", v)
	}
	if warn != "rejected_cells=1" {
		t.Fatalf("unexpected warnings %q", warn)
	}

	_, _, err = readWithWarnings(t, path, ReaderOptions{HasHeader: true, Strict: true})
	if err == nil || !strings.Contains(err.Error(), `"abc"`) {
		t.Fatalf("strict mode should reject abc, got %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	in, err := ReadFile("testdata/employees.csv", ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"out.csv", "out.csv.gz", "out.tsv.zst"} {
		path := filepath.Join(t.TempDir(), name)
		delim := ','
		if name == "out.tsv.zst" {
			delim = '\t'
		}
		if err := WriteAll(path, in, WriterOptions{Delimiter: delim}); err != nil {
			t.Fatal(err)
		}
		out, err := ReadFile(path, ReaderOptions{HasHeader: true, Delimiter: delim})
		if err != nil {
			t.Fatal(err)
		}
		if out.Rows() != in.Rows() || out.Cols() != in.Cols() {
			t.Fatalf("%s: shape %dx%d, want %dx%d", name, out.Rows(), out.Cols(), in.Rows(), in.Cols())
		}
		for r := 0; r < in.Rows(); r++ {
			for _, c := range in.ColumnNames() {
				a, _ := in.Cell(r, c)
				b, _ := out.Cell(r, c)
				if !tb.Equal(a, b) {
					t.Fatalf("%s: cell (%d,%s) = %v, want %v", name, r, c, b, a)
				}
			}
		}
	}
}
