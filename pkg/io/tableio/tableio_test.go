package tableio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/ruleflow/pkg/rules"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func people(t *testing.T) *tb.Frame {
	t.Helper()
	f := tb.NewFrame(tb.Schema{Columns: []tb.ColumnSchema{
		{Name: "name", Type: tb.KindString, Nullable: true},
		{Name: "age", Type: tb.KindInt, Nullable: true},
		{Name: "score", Type: tb.KindFloat, Nullable: true},
	}})
	require.NoError(t, f.AppendRow("Taro", int64(25), 1.5))
	require.NoError(t, f.AppendRow("Hanako", int64(30), nil))
	require.NoError(t, f.AppendRow("Jiro", nil, 3.25))
	return f
}

func TestDetect(t *testing.T) {
	cases := map[string]Format{
		"a.csv":         CSV,
		"a.CSV.gz":      CSV,
		"dir/a.tsv.zst": TSV,
		"a.ndjson":      JSONL,
		"a.jsonl":       JSONL,
		"a.parquet":     Parquet,
		"a.xlsx":        XLSX,
		"a.arff":        ARFF,
	}
	for path, want := range cases {
		got, err := Detect(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := Detect("a.docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRoundTripEveryFormat(t *testing.T) {
	in := people(t)
	dir := t.TempDir()
	for _, name := range []string{"p.csv", "p.tsv.gz", "p.jsonl.zst", "p.parquet", "p.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(in, path, Options{}), name)
		out, err := Load(path, Options{})
		require.NoError(t, err, name)
		require.Equal(t, in.ColumnNames(), out.ColumnNames(), name)
		require.Equal(t, in.Rows(), out.Rows(), name)
		for r := 0; r < in.Rows(); r++ {
			for _, c := range in.ColumnNames() {
				a, _ := in.Cell(r, c)
				b, _ := out.Cell(r, c)
				assert.True(t, tb.Equal(a, b), "%s (%d,%s): got %v want %v", name, r, c, b, a)
			}
		}
	}
}

func TestARFFKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.arff")
	require.NoError(t, Save(people(t), path, Options{}))
	out, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rows())
	v, err := out.Cell(1, "age")
	require.NoError(t, err)
	assert.Equal(t, "30", v.String())
}

func TestCompressedBinaryRejected(t *testing.T) {
	err := Save(people(t), filepath.Join(t.TempDir(), "p.parquet.gz"), Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRaggedCSVReportsRepairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2\n3,y,z\n"), 0o644))

	var got []string
	f, err := Load(path, Options{OnWarning: func(_, msg string) { got = append(got, msg) }})
	require.NoError(t, err)
	assert.Equal(t, 3, f.Rows())
	assert.Equal(t, []string{"short_records=1, long_records=1"}, got)
}

func TestLateCellsAreReportedOrRejected(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,age\n")
	for i := 0; i < 100; i++ {
		b.WriteString("p,30\n")
	}
	b.WriteString("q,30.5\n")
	path := filepath.Join(t.TempDir(), "late.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	var got []string
	f, err := Load(path, Options{OnWarning: func(_, msg string) { got = append(got, msg) }})
	require.NoError(t, err)
	assert.Equal(t, []string{"widened_to_float=age"}, got)

	older, err := rules.NewFilter("age", rules.OpGreater, tb.Int(30))
	require.NoError(t, err)
	out, err := older.Apply(f)
	require.NoError(t, err)
	require.Equal(t, 1, out.Rows())
	v, err := out.Cell(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "q", v.String())

	require.NoError(t, os.WriteFile(path, []byte(b.String()+"r,abc\n"), 0o644))
	_, err = Load(path, Options{Strict: true})
	assert.Error(t, err)

	jl := filepath.Join(t.TempDir(), "late.jsonl")
	require.NoError(t, os.WriteFile(jl, []byte(`{"age": 30}`+"\n"+`{"age": "n/a"}`+"\n"), 0o644))
	got = nil
	_, err = Load(jl, Options{SampleRows: 1, OnWarning: func(_, msg string) { got = append(got, msg) }})
	require.NoError(t, err)
	assert.Equal(t, []string{"rejected_cells=1"}, got)
}
