package table

import (
	"regexp"
	"strconv"
	"strings"
)

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// InferKinds guesses a kind per column from a sample of text rows. Empty
// cells are ignored; a column is numeric when numeric cells outnumber text
// cells, and int only when every numeric cell is integral.
func InferKinds(rows [][]string) []Kind {
	ncol := 0
	for _, row := range rows {
		if len(row) > ncol {
			ncol = len(row)
		}
	}
	kinds := make([]Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			lv := strings.ToLower(v)
			if lv == "true" || lv == "false" {
				boolean++
				continue
			}
			str++
		}
		switch {
		case boolean > 0 && num == 0 && str == 0:
			kinds[c] = KindBool
		case num > str+boolean:
			if integer == num {
				kinds[c] = KindInt
			} else {
				kinds[c] = KindFloat
			}
		default:
			kinds[c] = KindString
		}
	}
	return kinds
}

// ParseCell converts text into a Value of the given kind. ok is false for
// empty or unparseable text, which loaders store as null.
func ParseCell(k Kind, text string) (Value, bool) {
	val := strings.TrimSpace(text)
	if val == "" {
		return Null(), false
	}
	switch k {
	case KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			return Float(x), true
		}
	case KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			return Int(x), true
		}
	case KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			return Bool(x), true
		}
	default:
		return String(val), true
	}
	return Null(), false
}

// SetCellText parses text for the named column and stores it at row. Empty
// text stores null. A non-integral number bound for an int column widens the
// column to float first. It reports false when the text does not fit the
// column kind; the cell is then left null.
func (f *Frame) SetCellText(row int, name, text string) bool {
	i, ok := f.index[name]
	if !ok {
		return false
	}
	k := f.schema.Columns[i].Type
	val := strings.TrimSpace(text)
	if val == "" {
		return f.SetCell(row, name, nil) == nil
	}
	v, ok := ParseCell(k, val)
	if !ok && k == KindInt && numre.MatchString(val) {
		if v, ok = ParseCell(KindFloat, val); ok {
			ok = f.WidenToFloat(name) == nil
		}
	}
	if !ok {
		_ = f.SetCell(row, name, nil)
		return false
	}
	return f.SetCell(row, name, v) == nil
}

// Widened lists the columns that were int in before and are float in after.
func Widened(before, after Schema) []string {
	var out []string
	for i, cs := range before.Columns {
		if cs.Type == KindInt && i < len(after.Columns) && after.Columns[i].Type == KindFloat {
			out = append(out, cs.Name)
		}
	}
	return out
}
