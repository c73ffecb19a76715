package parquetio

import (
	"path/filepath"
	"testing"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func makeFrame(rows int) *tb.Frame {
	s := tb.Schema{Columns: []tb.ColumnSchema{
		{Name: "a", Type: tb.KindFloat, Nullable: true},
		{Name: "b", Type: tb.KindInt, Nullable: true},
		{Name: "name", Type: tb.KindString, Nullable: true},
		{Name: "ok", Type: tb.KindBool, Nullable: true},
	}}
	f := tb.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "a", float64(i%100)+0.5)
		if i%7 != 0 {
			_ = f.SetCell(i, "b", int64(i%10))
		}
		_ = f.SetCell(i, "name", "row")
		_ = f.SetCell(i, "ok", i%2 == 0)
	}
	return f
}

func TestWriteReadRoundTrip(t *testing.T) {
	in := makeFrame(50)
	path := filepath.Join(t.TempDir(), "rt.parquet")
	if err := WriteAll(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != in.Rows() {
		t.Fatalf("rows = %d, want %d", out.Rows(), in.Rows())
	}
	for i, cs := range out.Schema().Columns {
		want := in.Schema().Columns[i]
		if cs.Name != want.Name || cs.Type != want.Type {
			t.Fatalf("column %d = %s/%s, want %s/%s", i, cs.Name, cs.Type, want.Name, want.Type)
		}
	}
	for r := 0; r < in.Rows(); r++ {
		for _, c := range in.ColumnNames() {
			a, _ := in.Cell(r, c)
			b, _ := out.Cell(r, c)
			if !tb.Equal(a, b) {
				t.Fatalf("cell (%d,%s) = %v, want %v", r, c, b, a)
			}
		}
	}
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WriteAll(path, f)
	}
}
