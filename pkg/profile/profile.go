// Package profile summarizes the columns of a Frame.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (s NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

// Freq is one entry of a most-frequent list.
type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Top returns up to k most frequent values, ties in ascending value order.
// k <= 0 returns all of them.
func (s StringStats) Top(k int) []Freq {
	out := make([]Freq, 0, len(s.Freqs))
	for v, n := range s.Freqs {
		out = append(out, Freq{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

type ColumnProfile struct {
	Name string
	Kind tb.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Collector accumulates statistics over one or more frames sharing a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema tb.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case tb.KindFloat, tb.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case tb.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Of profiles a single frame.
func Of(f *tb.Frame, topK int) *Collector {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	return c
}

// ConsumeFrame folds f into the running statistics. Columns unknown to the
// collector are ignored.
func (c *Collector) ConsumeFrame(f *tb.Frame) {
	for _, name := range f.ColumnNames() {
		idx, ok := c.index[name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(name)
		for i := 0; i < col.Len(); i++ {
			v := col.Value(i)
			switch {
			case cp.Num != nil:
				if v.IsNull() {
					cp.Num.Nulls++
					continue
				}
				var x float64
				switch n := v.Interface().(type) {
				case int64:
					x = float64(n)
				case float64:
					x = n
				}
				cp.Num.Count++
				cp.Num.Min = math.Min(cp.Num.Min, x)
				cp.Num.Max = math.Max(cp.Num.Max, x)
				cp.Num.Sum += x
			case cp.Bool != nil:
				if v.IsNull() {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if b, _ := v.Interface().(bool); b {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			default:
				if v.IsNull() {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[v.String()]++
				}
			}
		}
	}
}

// Columns returns the collected profiles in schema order.
func (c *Collector) Columns() []ColumnProfile { return append([]ColumnProfile(nil), c.cols...) }

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", cp.Num.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, fq := range cp.Str.Top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", fq.Value, fq.Count)
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string      `json:"name"`
	Kind string      `json:"kind"`
	Num  *NumStats   `json:"num,omitempty"`
	Bool *BoolStats  `json:"bool,omitempty"`
	Str  *JSONString `json:"str,omitempty"`
}

type JSONString struct {
	Count int    `json:"count"`
	Nulls int    `json:"nulls"`
	Top   []Freq `json:"top,omitempty"`
}

// ReportJSON returns a value ready for encoding/json. Numeric columns with
// no values report zero min and max rather than infinities.
func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String()}
		switch {
		case cp.Num != nil:
			n := *cp.Num
			if n.Count == 0 {
				n.Min, n.Max = 0, 0
			}
			jc.Num = &n
		case cp.Bool != nil:
			b := *cp.Bool
			jc.Bool = &b
		default:
			jc.Str = &JSONString{Count: cp.Str.Count, Nulls: cp.Str.Nulls, Top: cp.Str.Top(c.topK)}
			if len(jc.Str.Top) == 0 {
				jc.Str.Top = nil
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
