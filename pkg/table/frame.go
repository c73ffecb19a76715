package table

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Has reports whether the schema contains a column called name.
func (s Schema) Has(name string) bool {
	for _, cs := range s.Columns {
		if cs.Name == name {
			return true
		}
	}
	return false
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	Value(i int) Value

	take(name string, rows []int) Column
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) Value(i int) Value {
	if c.nulls[i] {
		return Null()
	}
	return Bool(c.data[i])
}
func (c *BoolColumn) take(name string, rows []int) Column {
	out := NewBoolColumn(name, len(rows))
	for i, r := range rows {
		out.data[i], out.nulls[i] = c.data[r], c.nulls[r]
	}
	return out
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Value(i int) Value {
	if c.nulls[i] {
		return Null()
	}
	return Int(c.data[i])
}
func (c *IntColumn) take(name string, rows []int) Column {
	out := NewIntColumn(name, len(rows))
	for i, r := range rows {
		out.data[i], out.nulls[i] = c.data[r], c.nulls[r]
	}
	return out
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Value(i int) Value {
	if c.nulls[i] {
		return Null()
	}
	return Float(c.data[i])
}
func (c *FloatColumn) take(name string, rows []int) Column {
	out := NewFloatColumn(name, len(rows))
	for i, r := range rows {
		out.data[i], out.nulls[i] = c.data[r], c.nulls[r]
	}
	return out
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Value(i int) Value {
	if c.nulls[i] {
		return Null()
	}
	return String(c.data[i])
}
func (c *StringColumn) take(name string, rows []int) Column {
	out := NewStringColumn(name, len(rows))
	for i, r := range rows {
		out.data[i], out.nulls[i] = c.data[r], c.nulls[r]
	}
	return out
}

func newColumn(cs ColumnSchema) Column {
	switch cs.Type {
	case KindBool:
		return NewBoolColumn(cs.Name, 0)
	case KindInt:
		return NewIntColumn(cs.Name, 0)
	case KindFloat:
		return NewFloatColumn(cs.Name, 0)
	case KindString:
		return NewStringColumn(cs.Name, 0)
	default:
		panic("invalid column kind")
	}
}

// Frame is a columnar container for tabular data.
//
// Rules treat a Frame as a value: the derivation methods (Clone, Take, Drop,
// RenameColumn) return a new Frame that shares no storage with the receiver.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

// NewFrame builds an empty frame. It panics on duplicate column names.
func NewFrame(s Schema) *Frame {
	f := &Frame{schema: Schema{Columns: append([]ColumnSchema(nil), s.Columns...)}, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		if _, dup := f.index[cs.Name]; dup {
			panic("duplicate column name: " + cs.Name)
		}
		f.cols[i] = newColumn(cs)
		f.index[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string { return f.schema.Names() }

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Cell returns the value at row in the named column.
func (f *Frame) Cell(row int, name string) (Value, error) {
	i, ok := f.index[name]
	if !ok {
		return Null(), fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if row < 0 || row >= f.nrows {
		return Null(), fmt.Errorf("row %d out of range [0,%d)", row, f.nrows)
	}
	return f.cols[i].Value(row), nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *BoolColumn:
			col.AppendNull()
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.nrows++
}

// AppendRow appends one row; values are given in column order.
func (f *Frame) AppendRow(values ...any) error {
	if len(values) != len(f.cols) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(values), len(f.cols))
	}
	f.AppendNullRow()
	row := f.nrows - 1
	for i, v := range values {
		if err := f.SetCell(row, f.cols[i].Name(), v); err != nil {
			return err
		}
	}
	return nil
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if tv, ok := v.(Value); ok {
		v = tv.Interface()
	}
	c := f.cols[i]
	switch col := c.(type) {
	case *BoolColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
				return fmt.Errorf("column %s expects int/int64, got %v", name, t)
			}
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// WidenToFloat converts the named int column to a float column in place.
// Float columns are left alone.
func (f *Frame) WidenToFloat(name string) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	switch col := f.cols[i].(type) {
	case *FloatColumn:
		return nil
	case *IntColumn:
		fc := NewFloatColumn(name, len(col.data))
		for r, x := range col.data {
			fc.data[r] = float64(x)
		}
		copy(fc.nulls, col.nulls)
		f.cols[i] = fc
		f.schema = f.cloneSchema()
		f.schema.Columns[i].Type = KindFloat
		return nil
	}
	return fmt.Errorf("column %s is %s, not int", name, f.schema.Columns[i].Type)
}

// Take returns a new frame holding the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{schema: f.cloneSchema(), cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: len(rows)}
	for i, c := range f.cols {
		out.cols[i] = c.take(c.Name(), rows)
		out.index[c.Name()] = i
	}
	return out
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	return f.Take(f.allRows())
}

// Drop returns a copy of f without the named columns. Names that are not
// present are ignored; the remaining columns keep their order.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	rows := f.allRows()
	out := &Frame{index: make(map[string]int), nrows: f.nrows}
	for i, c := range f.cols {
		if _, ok := drop[c.Name()]; ok {
			continue
		}
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.take(c.Name(), rows))
		out.schema.Columns = append(out.schema.Columns, f.schema.Columns[i])
	}
	return out
}

// RenameColumn returns a copy of f with column old renamed to name, keeping
// its position. A missing old column yields an unchanged copy; renaming onto
// another existing column fails with ErrDuplicateColumn.
func (f *Frame) RenameColumn(old, name string) (*Frame, error) {
	i, ok := f.index[old]
	if !ok || old == name {
		return f.Clone(), nil
	}
	if _, taken := f.index[name]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	rows := f.allRows()
	out := &Frame{schema: f.cloneSchema(), cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: f.nrows}
	for j, c := range f.cols {
		n := c.Name()
		if j == i {
			n = name
			out.schema.Columns[j].Name = name
		}
		out.cols[j] = c.take(n, rows)
		out.index[n] = j
	}
	return out, nil
}

func (f *Frame) cloneSchema() Schema {
	return Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)}
}

func (f *Frame) allRows() []int {
	rows := make([]int, f.nrows)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
