package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Reader loads flat Parquet files. Column kinds come from the file schema,
// so no sampling is needed.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema tb.Schema
	leaves []parquet.Field
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	r := parquet.NewReader(pf)
	leaves := r.Schema().Fields()
	schema := tb.Schema{Columns: make([]tb.ColumnSchema, len(leaves))}
	for i, fld := range leaves {
		if !fld.Leaf() {
			_ = r.Close()
			_ = f.Close()
			return nil, fmt.Errorf("parquet column %q is nested; only flat files are supported", fld.Name())
		}
		schema.Columns[i] = tb.ColumnSchema{Name: fld.Name(), Type: kindOf(fld.Type()), Nullable: true}
	}
	return &Reader{file: f, reader: r, schema: schema, leaves: leaves}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() tb.Schema { return r.schema }

func (r *Reader) ReadAll() (*tb.Frame, error) {
	f := tb.NewFrame(r.schema)
	names := r.schema.Names()
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			row := f.Rows() - 1
			for _, v := range buf[i] {
				c := v.Column()
				if v.IsNull() || c < 0 || c >= len(names) {
					continue
				}
				_ = f.SetCell(row, names[c], valueOf(r.schema.Columns[c].Type, v))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

// ReadFile loads a whole Parquet file.
func ReadFile(path string) (*tb.Frame, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}

func kindOf(t parquet.Type) tb.Kind {
	switch t.Kind() {
	case parquet.Boolean:
		return tb.KindBool
	case parquet.Int32, parquet.Int64:
		return tb.KindInt
	case parquet.Float, parquet.Double:
		return tb.KindFloat
	default:
		return tb.KindString
	}
}

func valueOf(k tb.Kind, v parquet.Value) tb.Value {
	switch k {
	case tb.KindBool:
		return tb.Bool(v.Boolean())
	case tb.KindInt:
		if v.Kind() == parquet.Int32 {
			return tb.Int(int64(v.Int32()))
		}
		return tb.Int(v.Int64())
	case tb.KindFloat:
		if v.Kind() == parquet.Float {
			return tb.Float(float64(v.Float()))
		}
		return tb.Float(v.Double())
	default:
		if v.Kind() == parquet.ByteArray || v.Kind() == parquet.FixedLenByteArray {
			return tb.String(string(v.ByteArray()))
		}
		return tb.String(v.String())
	}
}
