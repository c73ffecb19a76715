// Package golearn converts between Frames and
// github.com/sjwhitworth/golearn/base DenseInstances, and reads and writes
// ARFF files through that conversion.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Missing is the categorical value that stands for a null cell. Numeric
// nulls are stored as NaN.
const Missing = "?"

// ToDenseInstances converts a Frame into golearn DenseInstances. Int and
// float columns become float attributes; everything else is categorical.
// The last column is marked as the class attribute.
func ToDenseInstances(f *tb.Frame) (*base.DenseInstances, error) {
	schema := f.Schema()
	attrs := make([]base.Attribute, len(schema.Columns))
	for i, cs := range schema.Columns {
		switch cs.Type {
		case tb.KindFloat, tb.KindInt:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c, cs := range schema.Columns {
		col, _ := f.ColumnByName(cs.Name)
		for r := 0; r < f.Rows(); r++ {
			switch cs.Type {
			case tb.KindFloat, tb.KindInt:
				v := math.NaN()
				switch x := col.Value(r).Interface().(type) {
				case float64:
					v = x
				case int64:
					v = float64(x)
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
			default:
				s := Missing
				if !col.IsNull(r) {
					s = col.Value(r).String()
				}
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(s))
			}
		}
	}
	if len(attrs) > 0 {
		if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame. NaN and
// Missing become nulls.
func FromDenseInstances(inst *base.DenseInstances) (*tb.Frame, error) {
	attrs := inst.AllAttributes()
	schema := tb.Schema{Columns: make([]tb.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := tb.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = tb.KindFloat
		}
		schema.Columns[i] = tb.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.GetName(), err)
		}
		specs[i] = spec
	}
	f := tb.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			switch cs.Type {
			case tb.KindFloat:
				if v := base.UnpackBytesToFloat(raw); !math.IsNaN(v) {
					_ = f.SetCell(r, cs.Name, v)
				}
			default:
				if v := specs[c].GetAttribute().GetStringFromSysVal(raw); v != Missing {
					_ = f.SetCell(r, cs.Name, v)
				}
			}
		}
	}
	return f, nil
}

// LoadARFF reads a dense ARFF file.
func LoadARFF(path string) (*tb.Frame, error) {
	inst, err := base.ParseDenseARFFToInstances(path)
	if err != nil {
		return nil, fmt.Errorf("parse arff %s: %w", path, err)
	}
	return FromDenseInstances(inst)
}

// SaveARFF writes f as a dense ARFF file under the given relation name.
func SaveARFF(f *tb.Frame, path, relation string) error {
	inst, err := ToDenseInstances(f)
	if err != nil {
		return err
	}
	if relation == "" {
		relation = "ruleflow"
	}
	return base.SerializeInstancesToDenseARFF(inst, path, relation)
}
