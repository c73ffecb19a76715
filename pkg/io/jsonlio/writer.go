package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"

	iox "github.com/wdm0006/ruleflow/pkg/io/ioutils"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// WriteAll writes one object per row, keys in column order. Null cells are
// omitted from their row's object.
func WriteAll(path string, f *tb.Frame) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, f)
}

func Write(w io.Writer, f *tb.Frame) error {
	bw := bufio.NewWriter(w)
	names := f.ColumnNames()
	keys := make([][]byte, len(names))
	cols := make([]tb.Column, len(names))
	for i, n := range names {
		k, err := json.Marshal(n)
		if err != nil {
			return err
		}
		keys[i] = k
		cols[i], _ = f.ColumnByName(n)
	}
	for r := 0; r < f.Rows(); r++ {
		_ = bw.WriteByte('{')
		first := true
		for c, col := range cols {
			if col.IsNull(r) {
				continue
			}
			v, err := json.Marshal(col.Value(r).Interface())
			if err != nil {
				return err
			}
			if !first {
				_ = bw.WriteByte(',')
			}
			first = false
			_, _ = bw.Write(keys[c])
			_ = bw.WriteByte(':')
			_, _ = bw.Write(v)
		}
		if _, err := bw.WriteString("}\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
