// Package xlsxio loads and saves Frames as Excel workbooks, one table per sheet.
package xlsxio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

const defaultSheet = "Sheet1"

type ReaderOptions struct {
	Sheet      string // default: first sheet
	HasHeader  bool
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on cells that do not fit their column
	// OnWarning receives a summary of rejected cells and widened columns.
	OnWarning func(msg string)
}

// ReadFile loads one sheet. Column kinds are inferred from the displayed
// cell text the same way the CSV reader does.
func ReadFile(path string, opt ReaderOptions) (*tb.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	ncol := 0
	for _, r := range rows {
		if len(r) > ncol {
			ncol = len(r)
		}
	}
	names := make([]string, ncol)
	for i := range names {
		names[i] = "col_" + strconv.Itoa(i)
	}
	if opt.HasHeader && len(rows) > 0 {
		for i, h := range rows[0] {
			if h = strings.TrimSpace(h); h != "" {
				names[i] = h
			}
		}
		rows = rows[1:]
	}
	if err := checkUnique(names); err != nil {
		return nil, err
	}

	max := opt.SampleRows
	if max <= 0 {
		max = 100
	}
	sample := rows
	if len(sample) > max {
		sample = sample[:max]
	}
	kinds := tb.InferKinds(sample)
	schema := tb.Schema{Columns: make([]tb.ColumnSchema, ncol)}
	for i, n := range names {
		k := tb.KindString
		if i < len(kinds) {
			k = kinds[i]
		}
		schema.Columns[i] = tb.ColumnSchema{Name: n, Type: k, Nullable: true}
	}

	fr := tb.NewFrame(schema)
	rejected := 0
	for _, rec := range rows {
		fr.AppendNullRow()
		row := fr.Rows() - 1
		for i, cs := range schema.Columns {
			if i >= len(rec) {
				break
			}
			if fr.SetCellText(row, cs.Name, rec[i]) {
				continue
			}
			rejected++
			if opt.Strict {
				return nil, fmt.Errorf("sheet %q row %d column %s: %q is not %s", sheet, row+1, cs.Name, rec[i], fr.Schema().Columns[i].Type)
			}
		}
	}
	if opt.OnWarning != nil {
		var parts []string
		if rejected > 0 {
			parts = append(parts, fmt.Sprintf("rejected_cells=%d", rejected))
		}
		if w := tb.Widened(schema, fr.Schema()); len(w) > 0 {
			parts = append(parts, "widened_to_float="+strings.Join(w, "|"))
		}
		if len(parts) > 0 {
			opt.OnWarning(strings.Join(parts, ", "))
		}
	}
	return fr, nil
}

type WriterOptions struct {
	Sheet string // default "Sheet1"
}

// WriteAll saves f as a single-sheet workbook with a bold header row. Null
// cells are left empty.
func WriteAll(path string, f *tb.Frame, opt WriterOptions) error {
	x := excelize.NewFile()
	defer func() { _ = x.Close() }()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := x.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	names := f.ColumnNames()
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(names) > 0 {
		style, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			last, _ := excelize.CoordinatesToCellName(len(names), 1)
			_ = x.SetCellStyle(sheet, "A1", last, style)
		}
	}

	cols := make([]tb.Column, len(names))
	for i, n := range names {
		cols[i], _ = f.ColumnByName(n)
	}
	row := make([]any, len(cols))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			row[c] = nil
			if !col.IsNull(r) {
				row[c] = col.Value(r).Interface()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	return x.SaveAs(path)
}

func checkUnique(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return fmt.Errorf("duplicate column %q in sheet header", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
