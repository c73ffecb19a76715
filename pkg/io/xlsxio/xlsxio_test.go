package xlsxio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func sample(t *testing.T) *tb.Frame {
	t.Helper()
	f := tb.NewFrame(tb.Schema{Columns: []tb.ColumnSchema{
		{Name: "name", Type: tb.KindString, Nullable: true},
		{Name: "age", Type: tb.KindInt, Nullable: true},
		{Name: "score", Type: tb.KindFloat, Nullable: true},
		{Name: "active", Type: tb.KindBool, Nullable: true},
	}})
	require.NoError(t, f.AppendRow("Taro", int64(25), 1.5, true))
	require.NoError(t, f.AppendRow("Hanako", nil, 2.25, false))
	require.NoError(t, f.AppendRow("Jiro", int64(28), nil, nil))
	return f
}

func TestRoundTrip(t *testing.T) {
	in := sample(t)
	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, WriteAll(path, in, WriterOptions{Sheet: "People"}))

	out, err := ReadFile(path, ReaderOptions{Sheet: "People", HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, in.ColumnNames(), out.ColumnNames())
	for i, cs := range out.Schema().Columns {
		assert.Equal(t, in.Schema().Columns[i].Type, cs.Type, cs.Name)
	}
	require.Equal(t, in.Rows(), out.Rows())
	for r := 0; r < in.Rows(); r++ {
		for _, c := range in.ColumnNames() {
			a, _ := in.Cell(r, c)
			b, _ := out.Cell(r, c)
			assert.True(t, tb.Equal(a, b), "cell (%d,%s): got %v want %v", r, c, b, a)
		}
	}
}

func TestFirstSheetWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, WriteAll(path, sample(t), WriterOptions{}))

	out, err := ReadFile(path, ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"col_0", "col_1", "col_2", "col_3"}, out.ColumnNames())
	assert.Equal(t, 4, out.Rows())
	v, err := out.Cell(0, "col_0")
	require.NoError(t, err)
	assert.Equal(t, "name", v.String())
}

func TestMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.xlsx")
	require.NoError(t, WriteAll(path, sample(t), WriterOptions{}))
	_, err := ReadFile(path, ReaderOptions{Sheet: "Nope"})
	assert.Error(t, err)
}
