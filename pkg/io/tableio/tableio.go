// Package tableio loads and saves Frames, picking the codec from the file
// extension.
package tableio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wdm0006/ruleflow/adapters/golearn"
	"github.com/wdm0006/ruleflow/pkg/io/csvio"
	iox "github.com/wdm0006/ruleflow/pkg/io/ioutils"
	"github.com/wdm0006/ruleflow/pkg/io/jsonlio"
	"github.com/wdm0006/ruleflow/pkg/io/parquetio"
	"github.com/wdm0006/ruleflow/pkg/io/xlsxio"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

var ErrUnknownFormat = errors.New("unknown table format")

type Format string

const (
	CSV     Format = "csv"
	TSV     Format = "tsv"
	JSONL   Format = "jsonl"
	Parquet Format = "parquet"
	XLSX    Format = "xlsx"
	ARFF    Format = "arff"
)

// Formats lists the supported formats in a stable order.
func Formats() []Format { return []Format{CSV, TSV, JSONL, Parquet, XLSX, ARFF} }

type Options struct {
	NoHeader   bool   // csv/tsv/xlsx: first row is data
	Delimiter  rune   // csv: 0 sniffs on load and writes ',' on save
	Sheet      string // xlsx
	SampleRows int    // rows used for kind inference
	Strict     bool   // csv/tsv/jsonl/xlsx: fail on ragged records or cells that do not fit their column
	// OnWarning receives repairs made while loading, such as padded CSV
	// records, rejected cells or int columns widened to float.
	OnWarning func(path, msg string)
}

// Detect maps a path to its format. Compression suffixes (.gz, .zst) are
// ignored; only csv, tsv and jsonl honor them.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(iox.TrimCompressionExt(path)))
	switch ext {
	case ".csv", ".txt":
		return CSV, nil
	case ".tsv", ".tab":
		return TSV, nil
	case ".jsonl", ".ndjson":
		return JSONL, nil
	case ".parquet", ".pq":
		return Parquet, nil
	case ".xlsx":
		return XLSX, nil
	case ".arff":
		return ARFF, nil
	}
	return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnknownFormat, path, Formats())
}

// Load reads the table at path.
func Load(path string, opt Options) (*tb.Frame, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	if err := checkCompression(path, format); err != nil {
		return nil, err
	}
	var f *tb.Frame
	switch format {
	case CSV, TSV:
		f, err = loadCSV(path, format, opt)
	case JSONL:
		f, err = loadJSONL(path, opt)
	case Parquet:
		f, err = parquetio.ReadFile(path)
	case XLSX:
		f, err = xlsxio.ReadFile(path, xlsxio.ReaderOptions{
			Sheet:      opt.Sheet,
			HasHeader:  !opt.NoHeader,
			SampleRows: opt.SampleRows,
			Strict:     opt.Strict,
			OnWarning:  func(msg string) { opt.warn(path, msg) },
		})
	case ARFF:
		f, err = golearn.LoadARFF(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}

// Save writes f to path in the format its extension names.
func Save(f *tb.Frame, path string, opt Options) error {
	format, err := Detect(path)
	if err != nil {
		return err
	}
	if err := checkCompression(path, format); err != nil {
		return err
	}
	switch format {
	case CSV, TSV:
		err = csvio.WriteAll(path, f, csvio.WriterOptions{
			Delimiter: delimiter(format, opt),
			NoHeader:  opt.NoHeader,
		})
	case JSONL:
		err = jsonlio.WriteAll(path, f)
	case Parquet:
		err = parquetio.WriteAll(path, f)
	case XLSX:
		err = xlsxio.WriteAll(path, f, xlsxio.WriterOptions{Sheet: opt.Sheet})
	case ARFF:
		rel := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		err = golearn.SaveARFF(f, path, rel)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func loadCSV(path string, format Format, opt Options) (*tb.Frame, error) {
	r, c, err := csvio.Open(path, csvio.ReaderOptions{
		HasHeader:  !opt.NoHeader,
		Delimiter:  delimiter(format, opt),
		SampleRows: opt.SampleRows,
		Strict:     opt.Strict,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, err
	}
	opt.warn(path, r.Warnings())
	return f, nil
}

func loadJSONL(path string, opt Options) (*tb.Frame, error) {
	r, c, err := jsonlio.Open(path, jsonlio.ReaderOptions{SampleRows: opt.SampleRows, Strict: opt.Strict})
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, err
	}
	opt.warn(path, r.Warnings())
	return f, nil
}

func (o Options) warn(path, msg string) {
	if msg != "" && o.OnWarning != nil {
		o.OnWarning(path, msg)
	}
}

func delimiter(format Format, opt Options) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	if format == TSV {
		return '\t'
	}
	return 0
}

func checkCompression(path string, format Format) error {
	if iox.CompressionFromPath(path) == iox.None {
		return nil
	}
	switch format {
	case CSV, TSV, JSONL:
		return nil
	}
	return fmt.Errorf("%w: %s files cannot be compressed (%q)", ErrUnknownFormat, format, path)
}
