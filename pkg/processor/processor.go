// Package processor applies a rule pipeline to a table, one rule at a time,
// reporting per-step row counts and overall progress.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wdm0006/ruleflow/pkg/rules"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// ErrStepExecution is matched by *StepError.
var ErrStepExecution = errors.New("step execution failed")

// StepError reports the rule that aborted an execution.
type StepError struct {
	Index       int // 1-based
	Description string
	RowsBefore  int
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed on %d rows: %v", e.Index, e.Description, e.RowsBefore, e.Err)
}

func (e *StepError) Is(target error) bool { return target == ErrStepExecution }
func (e *StepError) Unwrap() error        { return e.Err }

// StepEvent is delivered after each rule completes.
type StepEvent struct {
	Index       int // 1-based
	Description string
	RowsBefore  int
	RowsAfter   int
}

type (
	StepFunc     func(StepEvent)
	ProgressFunc func(percent int)
)

type Option func(*Processor)

func WithStepObserver(fn StepFunc) Option { return func(p *Processor) { p.onStep = fn } }

func WithProgressObserver(fn ProgressFunc) Option {
	return func(p *Processor) { p.onProgress = fn }
}

func WithLogger(l zerolog.Logger) Option { return func(p *Processor) { p.log = l } }

// Processor executes pipelines. It holds no per-run state and may be reused,
// including from several goroutines.
type Processor struct {
	onStep     StepFunc
	onProgress ProgressFunc
	log        zerolog.Logger
}

func New(opts ...Option) *Processor {
	p := &Processor{log: zerolog.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Execute applies rs to f in order and returns the final table. f is never
// modified; with no rules f itself is returned. The first failing rule aborts
// the run with a *StepError and no table.
func (p *Processor) Execute(f *tb.Frame, rs rules.Pipeline) (*tb.Frame, error) {
	return p.run(f, rs, p.onProgress)
}

func (p *Processor) run(f *tb.Frame, rs rules.Pipeline, progress ProgressFunc) (*tb.Frame, error) {
	if len(rs) == 0 {
		return f, nil
	}
	log := p.log.With().Str("run_id", uuid.NewString()).Int("steps", len(rs)).Logger()
	log.Info().Int("rows", f.Rows()).Msg("execution started")
	start := time.Now()

	cur := f
	for i, r := range rs {
		desc := r.Describe()
		before := cur.Rows()
		log.Debug().Int("step", i+1).Str("rule", desc).Int("rows_before", before).Msg("applying rule")

		next, err := r.Apply(cur)
		if err != nil {
			log.Error().Err(err).Int("step", i+1).Str("rule", desc).Msg("execution aborted")
			return nil, &StepError{Index: i + 1, Description: desc, RowsBefore: before, Err: err}
		}
		cur = next

		if p.onStep != nil {
			p.onStep(StepEvent{Index: i + 1, Description: desc, RowsBefore: before, RowsAfter: cur.Rows()})
		}
		if progress != nil {
			progress(Percent(i+1, len(rs)))
		}
	}
	log.Info().Int("rows", cur.Rows()).Dur("elapsed", time.Since(start)).Msg("execution finished")
	return cur, nil
}

// Percent returns round(100*done/total), halves rounded up.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}
