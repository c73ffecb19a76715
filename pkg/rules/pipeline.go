package rules

import (
	"fmt"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Pipeline is an ordered sequence of rules. Editing methods return a new
// Pipeline and leave the receiver untouched.
type Pipeline []Rule

func (p Pipeline) Describe() []string {
	out := make([]string, len(p))
	for i, r := range p {
		out[i] = r.Describe()
	}
	return out
}

func (p Pipeline) Records() []Record {
	out := make([]Record, len(p))
	for i, r := range p {
		out[i] = r.Record()
	}
	return out
}

func (p Pipeline) Append(rs ...Rule) Pipeline {
	out := make(Pipeline, 0, len(p)+len(rs))
	return append(append(out, p...), rs...)
}

// Replace swaps the rule at i for r.
func (p Pipeline) Replace(i int, r Rule) (Pipeline, error) {
	if err := p.check(i); err != nil {
		return p, err
	}
	out := append(Pipeline(nil), p...)
	out[i] = r
	return out, nil
}

func (p Pipeline) Remove(i int) (Pipeline, error) {
	if err := p.check(i); err != nil {
		return p, err
	}
	out := make(Pipeline, 0, len(p)-1)
	out = append(out, p[:i]...)
	return append(out, p[i+1:]...), nil
}

// MoveUp swaps rule i with its predecessor; the first rule stays put.
func (p Pipeline) MoveUp(i int) (Pipeline, error) {
	if err := p.check(i); err != nil {
		return p, err
	}
	out := append(Pipeline(nil), p...)
	if i > 0 {
		out[i-1], out[i] = out[i], out[i-1]
	}
	return out, nil
}

// MoveDown swaps rule i with its successor; the last rule stays put.
func (p Pipeline) MoveDown(i int) (Pipeline, error) {
	if err := p.check(i); err != nil {
		return p, err
	}
	out := append(Pipeline(nil), p...)
	if i < len(out)-1 {
		out[i+1], out[i] = out[i], out[i+1]
	}
	return out, nil
}

// Prune drops Filter and Sort rules whose column is not in schema and
// returns them separately, so a stored workflow can be reused on a table
// that lacks some of its columns.
func (p Pipeline) Prune(schema tb.Schema) (kept Pipeline, skipped Pipeline) {
	for _, r := range p {
		var col string
		switch v := r.(type) {
		case Filter:
			col = v.Column()
		case Sort:
			col = v.Column()
		}
		if col != "" && !schema.Has(col) {
			skipped = append(skipped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, skipped
}

func (p Pipeline) check(i int) error {
	if i < 0 || i >= len(p) {
		return fmt.Errorf("rule index %d out of range [0,%d)", i, len(p))
	}
	return nil
}
