// Package session is a headless workbench: one loaded table, the pipeline
// being edited, undo/redo history and the auto-saved workflow.
package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wdm0006/ruleflow/pkg/history"
	"github.com/wdm0006/ruleflow/pkg/io/tableio"
	"github.com/wdm0006/ruleflow/pkg/processor"
	"github.com/wdm0006/ruleflow/pkg/rules"
	tb "github.com/wdm0006/ruleflow/pkg/table"
	"github.com/wdm0006/ruleflow/pkg/workflow"
)

var (
	ErrNoTable       = errors.New("no table loaded")
	ErrEmptyPipeline = errors.New("pipeline has no rules")
)

type Options struct {
	// Store is where the pipeline is restored from on Open and saved to on
	// Close. Nil disables both.
	Store *workflow.Store
	// AutoLoad restores the stored pipeline on Open.
	AutoLoad bool
	// AutoSave writes a non-empty pipeline to Store on Close.
	AutoSave     bool
	HistoryLimit int
	Table        tableio.Options
	Logger       *zerolog.Logger
	OnStep       processor.StepFunc
	OnProgress   processor.ProgressFunc
}

// Session is not safe for concurrent use.
type Session struct {
	opt      Options
	log      zerolog.Logger
	proc     *processor.Processor
	hist     *history.History
	table    *tb.Frame
	source   string
	pipeline rules.Pipeline
}

// Open starts a session. A stored workflow that cannot be read is logged
// and skipped; the session then starts with an empty pipeline.
func Open(opt Options) *Session {
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}
	if opt.Table.OnWarning == nil {
		opt.Table.OnWarning = func(path, msg string) {
			log.Warn().Str("path", path).Str("repairs", msg).Msg("table loaded with repairs")
		}
	}
	s := &Session{
		opt:  opt,
		log:  log,
		hist: history.New(opt.HistoryLimit),
		proc: processor.New(
			processor.WithLogger(log),
			processor.WithStepObserver(opt.OnStep),
			processor.WithProgressObserver(opt.OnProgress),
		),
	}
	if opt.Store != nil && opt.AutoLoad {
		p, version, found, err := opt.Store.Load()
		switch {
		case err != nil:
			log.Warn().Err(err).Str("path", opt.Store.Path).Msg("stored workflow ignored")
		case found:
			s.pipeline = p
			log.Info().Int("rules", len(p)).Int("version", version).Msg("workflow restored")
		}
	}
	return s
}

// LoadTable replaces the current table and clears the history.
func (s *Session) LoadTable(path string) error {
	f, err := tableio.Load(path, s.opt.Table)
	if err != nil {
		return err
	}
	s.table, s.source = f, path
	s.hist.Clear()
	s.log.Info().Str("path", path).Int("rows", f.Rows()).Int("columns", f.Cols()).Msg("table loaded")
	return nil
}

// SetTable installs a copy of f as the current table, as LoadTable does.
func (s *Session) SetTable(f *tb.Frame) {
	if f != nil {
		f = f.Clone()
	}
	s.table, s.source = f, ""
	s.hist.Clear()
}

// Table returns the current table or nil.
func (s *Session) Table() *tb.Frame { return s.table }

// Source is the path the current table was loaded from.
func (s *Session) Source() string { return s.source }

func (s *Session) Pipeline() rules.Pipeline { return append(rules.Pipeline(nil), s.pipeline...) }

func (s *Session) SetPipeline(p rules.Pipeline) {
	s.pipeline = append(rules.Pipeline(nil), p...)
}

func (s *Session) AddRule(r rules.Rule) { s.pipeline = s.pipeline.Append(r) }

// Execute runs the pipeline on the current table and makes the result
// current. The previous table is kept for Undo only when the run succeeds.
func (s *Session) Execute() (*tb.Frame, error) {
	if s.table == nil {
		return nil, ErrNoTable
	}
	if len(s.pipeline) == 0 {
		return nil, ErrEmptyPipeline
	}
	out, err := s.proc.Execute(s.table, s.pipeline)
	if err != nil {
		return nil, err
	}
	s.hist.Push(s.table)
	s.table = out
	return out, nil
}

// Undo restores the table from before the last Execute.
func (s *Session) Undo() bool {
	if s.table == nil {
		return false
	}
	prev, ok := s.hist.Undo(s.table)
	if ok {
		s.table = prev
	}
	return ok
}

func (s *Session) Redo() bool {
	if s.table == nil {
		return false
	}
	next, ok := s.hist.Redo(s.table)
	if ok {
		s.table = next
	}
	return ok
}

func (s *Session) CanUndo() bool { return s.hist.CanUndo() }
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

func (s *Session) SaveTable(path string) error {
	if s.table == nil {
		return ErrNoTable
	}
	if err := tableio.Save(s.table, path, s.opt.Table); err != nil {
		return err
	}
	s.log.Info().Str("path", path).Int("rows", s.table.Rows()).Msg("table saved")
	return nil
}

func (s *Session) SaveWorkflow(path string) error {
	if len(s.pipeline) == 0 {
		return ErrEmptyPipeline
	}
	return workflow.Save(path, workflow.FromPipeline(s.pipeline))
}

// LoadWorkflow replaces the pipeline with the one stored at path. When a
// table is loaded, rules that reference a column it lacks are dropped and
// returned.
func (s *Session) LoadWorkflow(path string) (skipped rules.Pipeline, err error) {
	doc, err := workflow.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := doc.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", path, err)
	}
	if s.table != nil {
		p, skipped = p.Prune(s.table.Schema())
		for _, r := range skipped {
			s.log.Warn().Str("rule", r.Describe()).Msg("rule skipped: column not in table")
		}
	}
	s.pipeline = p
	s.log.Info().Str("path", path).Int("version", doc.Version).Int("rules", len(p)).Msg("workflow loaded")
	return skipped, nil
}

// Close saves the pipeline to the store when auto-save is on.
func (s *Session) Close() error {
	if s.opt.Store == nil || !s.opt.AutoSave || len(s.pipeline) == 0 {
		return nil
	}
	if err := s.opt.Store.Save(s.pipeline); err != nil {
		return fmt.Errorf("auto-save workflow: %w", err)
	}
	return nil
}
