package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a single scalar cell or literal. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// NullText is the textual form of a null value.
const NullText = "null"

func Null() Value            { return Value{} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Float(v float64) Value  { return Value{kind: KindFloat, f: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindInvalid }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsNaN reports whether v is a float NaN.
func (v Value) IsNaN() bool { return v.kind == KindFloat && math.IsNaN(v.f) }

// ValueOf converts a decoded scalar (from JSON, YAML, TOML or Go code) into a Value.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Int(int64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t)), nil
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q", t.String())
		}
		return Float(f), nil
	case string:
		return String(t), nil
	default:
		return Null(), fmt.Errorf("unsupported scalar type %T", x)
	}
}

// ParseLiteral interprets user-typed text: an integer if it parses as one,
// then a float, otherwise the text itself.
func ParseLiteral(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return String(s)
}

// Interface returns the Go scalar held by v (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders v as text. Null renders as NullText.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return NullText
	}
}

func (v Value) float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// numeric returns v as a number, parsing text when needed.
func (v Value) numeric() (Value, bool) {
	switch v.kind {
	case KindInt, KindFloat:
		return v, true
	case KindString:
		n := ParseLiteral(strings.TrimSpace(v.s))
		return n, n.IsNumeric()
	default:
		return Value{}, false
	}
}

// Compare orders a against b. ok is false when the pair is incomparable:
// either side null or NaN, or kinds that cannot be reconciled. Text is
// compared to a number only when it parses as a numeric literal.
func Compare(a, b Value) (c int, ok bool) {
	if a.IsNull() || b.IsNull() {
		return 0, false
	}
	switch {
	case a.kind == KindString && b.kind == KindString:
		return strings.Compare(a.s, b.s), true
	case a.kind == KindBool && b.kind == KindBool:
		return compareBool(a.b, b.b), true
	case a.IsNumeric() || b.IsNumeric():
		x, okx := a.numeric()
		y, oky := b.numeric()
		if !okx || !oky || x.IsNaN() || y.IsNaN() {
			return 0, false
		}
		return compareNumbers(x, y), true
	}
	return 0, false
}

// Equal reports whether a and b hold the same value. Null equals only null.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	c, ok := Compare(a, b)
	return ok && c == 0
}

func compareNumbers(x, y Value) int {
	if x.kind == KindInt && y.kind == KindInt {
		switch {
		case x.i < y.i:
			return -1
		case x.i > y.i:
			return 1
		}
		return 0
	}
	fx, fy := x.float(), y.float()
	switch {
	case fx < fy:
		return -1
	case fx > fy:
		return 1
	}
	return 0
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	}
	return 1
}
