package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	iox "github.com/wdm0006/ruleflow/pkg/io/ioutils"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records and rejected cells
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords  int
	longRecords   int
	rejectedCells int
	widened       []string
}

// Open opens a (possibly compressed) CSV file. The returned closer releases
// the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
// A zero Delimiter is sniffed from the first few kilobytes.
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReaderSize(r, 8192)
	rr := csv.NewReader(br)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		d, lazy := sniffDelimiterAndQuotes(sample)
		rr.Comma = d
		rr.LazyQuotes = lazy
	} else {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.ReuseRecord = true
	return &Reader{r: rr, opt: opt}
}

// ReadFile loads a whole CSV file, inferring column kinds from a sample.
func ReadFile(path string, opt ReaderOptions) (*tb.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (tb.Schema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		return tb.Schema{}, nil, err
	}
	rec = append([]string(nil), rec...)
	sample := [][]string{}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		sample = append(sample, rec)
	}
	names = dedupe(names)

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tb.Schema{}, nil, err
		}
		sample = append(sample, append([]string(nil), rr...))
	}

	kinds := tb.InferKinds(sample)
	schema := tb.Schema{Columns: make([]tb.ColumnSchema, len(names))}
	for i := range names {
		k := tb.KindString
		if i < len(kinds) {
			k = kinds[i]
		}
		schema.Columns[i] = tb.ColumnSchema{Name: names[i], Type: k, Nullable: true}
	}
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// ReadAll loads the rest of the CSV into a Frame. Empty cells become nulls.
// Cells that do not fit the inferred kind become nulls and are counted in
// Warnings; an int column that meets a fractional number is widened to float.
func (r *Reader) ReadAll(schema tb.Schema) (*tb.Frame, error) {
	f := tb.NewFrame(schema)
	for len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	r.widened = tb.Widened(schema, f.Schema())
	return f, nil
}

func (r *Reader) appendRecord(f *tb.Frame, rec []string) error {
	cols := f.Schema().Columns
	switch {
	case len(rec) > len(cols):
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(cols), len(rec))
		}
	case len(rec) < len(cols):
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows()+1, len(cols), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range cols {
		if i >= len(rec) {
			break
		}
		if f.SetCellText(row, cs.Name, strings.ToValidUTF8(rec[i], "?")) {
			continue
		}
		r.rejectedCells++
		if r.opt.Strict {
			return fmt.Errorf("csv row %d column %s: %q is not %s", row+1, cs.Name, rec[i], f.Schema().Columns[i].Type)
		}
	}
	return nil
}

func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	// only the first line decides, so quoted text further down cannot skew it
	if i := strings.IndexByte(string(sample), '\n'); i > 0 {
		sample = sample[:i]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount%2 != 0
}

// dedupe suffixes repeated header names so the frame's names stay unique.
func dedupe(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = "col_" + strconv.Itoa(i)
		}
		if c, ok := seen[n]; ok {
			seen[n] = c + 1
			n = n + "." + strconv.Itoa(c)
		} else {
			seen[n] = 1
		}
		out[i] = n
	}
	return out
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	if r.rejectedCells > 0 {
		parts = append(parts, fmt.Sprintf("rejected_cells=%d", r.rejectedCells))
	}
	if len(r.widened) > 0 {
		parts = append(parts, "widened_to_float="+strings.Join(r.widened, "|"))
	}
	return strings.Join(parts, ", ")
}
