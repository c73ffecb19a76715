package csvio

import (
	"encoding/csv"
	"io"

	iox "github.com/wdm0006/ruleflow/pkg/io/ioutils"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

type WriterOptions struct {
	Delimiter rune // default ','
	NoHeader  bool
}

// WriteAll writes a Frame to a CSV file with headers. Null cells are written
// empty. A .gz or .zst suffix compresses the output.
func WriteAll(path string, f *tb.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, f, opt)
}

// Write encodes f as CSV onto w.
func Write(w io.Writer, f *tb.Frame, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	names := f.ColumnNames()
	if !opt.NoHeader {
		if err := cw.Write(names); err != nil {
			return err
		}
	}
	cols := make([]tb.Column, len(names))
	for i, n := range names {
		cols[i], _ = f.ColumnByName(n)
	}
	row := make([]string, len(names))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			if col.IsNull(r) {
				row[c] = ""
				continue
			}
			row[c] = col.Value(r).String()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
