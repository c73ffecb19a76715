package parquetio

import (
	"encoding/json"
	"fmt"

	pw "github.com/xitongsys/parquet-go/writer"
	local "github.com/xitongsys/parquet-go-source/local"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

func parquetSchemaJSON(s tb.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case tb.KindFloat:
			tag += "DOUBLE"
		case tb.KindInt:
			tag += "INT64"
		case tb.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file using the parquet-go JSON writer.
// Every column is OPTIONAL so nulls survive the round trip.
func WriteAll(path string, f *tb.Frame) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := writer.WriteStop(); err == nil && serr != nil {
			err = fmt.Errorf("parquet finish: %w", serr)
		}
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()

	names := f.ColumnNames()
	cols := make([]tb.Column, len(names))
	for i, n := range names {
		cols[i], _ = f.ColumnByName(n)
	}
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if !col.IsNull(r) {
				rec[names[i]] = col.Value(r).Interface()
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}
