package jsonlio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	iox "github.com/wdm0006/ruleflow/pkg/io/ioutils"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

type ReaderOptions struct {
	SampleRows int
	Strict     bool // if true, error on values that do not fit their column
}

// Reader decodes one JSON object per line. Columns appear in the order their
// keys are first seen in the sample.
type Reader struct {
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	keys []string

	rejectedCells int
	widened       []string
}

// Open opens a (possibly compressed) JSON Lines file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt}
}

// ReadFile loads a whole JSON Lines file.
func ReadFile(path string, opt ReaderOptions) (*tb.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

func (r *Reader) InferSchema() (tb.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	seen := map[string]struct{}{}
	for len(r.buf) < max {
		keys, m, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tb.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				r.keys = append(r.keys, k)
			}
		}
	}
	kinds := inferKinds(r.buf, r.keys)
	schema := tb.Schema{Columns: make([]tb.ColumnSchema, len(r.keys))}
	for i, k := range r.keys {
		schema.Columns[i] = tb.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the remaining records. Keys outside schema are ignored.
// Values that do not fit the inferred kind become nulls and are counted in
// Warnings; an int column that meets a fractional number is widened to float.
func (r *Reader) ReadAll(schema tb.Schema) (*tb.Frame, error) {
	f := tb.NewFrame(schema)
	for _, m := range r.buf {
		if err := r.appendRecord(f, m); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		_, m, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, m); err != nil {
			return nil, err
		}
	}
	r.widened = tb.Widened(schema, f.Schema())
	return f, nil
}

// Warnings summarises rejected values and widened columns from ReadAll.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.rejectedCells > 0 {
		parts = append(parts, fmt.Sprintf("rejected_cells=%d", r.rejectedCells))
	}
	if len(r.widened) > 0 {
		parts = append(parts, "widened_to_float="+strings.Join(r.widened, "|"))
	}
	return strings.Join(parts, ", ")
}

// next decodes one object and reports its keys in document order.
func (r *Reader) next() ([]string, map[string]any, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("jsonl: expected object, got %v", tok)
	}
	var keys []string
	m := map[string]any{}
	for r.dec.More() {
		kt, err := r.dec.Token()
		if err != nil {
			return nil, nil, err
		}
		k, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("jsonl: unexpected key %v", kt)
		}
		var v any
		if err := r.dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := m[k]; !dup {
			keys = append(keys, k)
		}
		m[k] = v
	}
	if _, err := r.dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}
	return keys, m, nil
}

func (r *Reader) appendRecord(f *tb.Frame, m map[string]any) error {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil || setCell(f, row, cs, v) {
			continue
		}
		r.rejectedCells++
		if r.opt.Strict {
			return fmt.Errorf("jsonl record %d key %s: %v is not %s", row+1, cs.Name, v, cs.Type)
		}
	}
	return nil
}

// setCell stores a decoded JSON value, reporting false when it does not fit
// the column kind.
func setCell(f *tb.Frame, row int, cs tb.ColumnSchema, v any) bool {
	switch cs.Type {
	case tb.KindInt, tb.KindFloat:
		switch t := v.(type) {
		case json.Number:
			return f.SetCellText(row, cs.Name, t.String())
		case string:
			return f.SetCellText(row, cs.Name, t)
		}
		return false
	case tb.KindBool:
		switch t := v.(type) {
		case bool:
			return f.SetCell(row, cs.Name, t) == nil
		case string:
			return f.SetCellText(row, cs.Name, t)
		}
		return false
	}
	return f.SetCell(row, cs.Name, text(v)) == nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	// nested values keep their JSON text
	b, _ := json.Marshal(v)
	return string(b)
}

func inferKinds(sample []map[string]any, keys []string) []tb.Kind {
	kinds := make([]tb.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range sample {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case json.Number:
				nNum++
				if _, err := t.Int64(); err == nil {
					nInt++
				}
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					continue
				}
				if numre.MatchString(s) {
					nNum++
					if !strings.ContainsAny(s, ".eE") {
						nInt++
					}
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case nBool > nNum && nBool >= nStr:
			kinds[i] = tb.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kinds[i] = tb.KindInt
			} else {
				kinds[i] = tb.KindFloat
			}
		default:
			kinds[i] = tb.KindString
		}
	}
	return kinds
}
