package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/ruleflow/pkg/io/csvio"
	"github.com/wdm0006/ruleflow/pkg/processor"
	"github.com/wdm0006/ruleflow/pkg/session"
	"github.com/wdm0006/ruleflow/pkg/workflow"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [workflow]",
		Short: "Apply a workflow to a table",
		Long: `Apply a workflow to the table named by --input and write the result to
--output, or as CSV to stdout when no output is given.

The workflow comes from the argument, the "workflow" config key, or, with
--autosave, from the last workflow saved by a previous run. Rules whose
column is missing from the table are skipped with a warning.

Exit codes:
  0 - success
  1 - a file could not be read or written, or a rule failed
  2 - bad arguments, flags or configuration`,
		Args: maxArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := a.cfg.Workflow
			if len(args) == 1 {
				path = args[0]
			}
			return a.run(path)
		},
	}
	cmd.Flags().StringP("input", "i", "", "input table")
	cmd.Flags().StringP("output", "o", "", "output table (default: CSV on stdout)")
	cmd.Flags().Bool("autosave", false, "remember the workflow for the next run")
	addTableFlags(cmd.Flags())
	return cmd
}

func (a *app) run(workflowPath string) error {
	if a.cfg.Input == "" {
		return usagef("no input table: pass --input or set input in the config")
	}
	opt := session.Options{
		HistoryLimit: a.cfg.History.Limit,
		Table:        a.cfg.TableOptions(),
		Logger:       &a.log,
		OnStep: func(e processor.StepEvent) {
			a.log.Info().Int("step", e.Index).Str("rule", e.Description).
				Int("rows_before", e.RowsBefore).Int("rows_after", e.RowsAfter).Msg("step done")
		},
	}
	if a.cfg.Autosave.Enable {
		store, err := a.store()
		if err != nil {
			return err
		}
		opt.Store, opt.AutoSave, opt.AutoLoad = &store, true, workflowPath == ""
	} else if workflowPath == "" {
		return usagef("no workflow: pass one as an argument, set workflow in the config, or use --autosave")
	}

	s := session.Open(opt)
	if err := s.LoadTable(a.cfg.Input); err != nil {
		return err
	}
	if workflowPath != "" {
		if _, err := s.LoadWorkflow(workflowPath); err != nil {
			return err
		}
	}
	if _, err := s.Execute(); err != nil {
		return err
	}
	if a.cfg.Output != "" {
		if err := s.SaveTable(a.cfg.Output); err != nil {
			return err
		}
	} else if err := csvio.Write(a.stdout, s.Table(), csvio.WriterOptions{}); err != nil {
		return err
	}
	return s.Close()
}

func (a *app) store() (workflow.Store, error) {
	if a.cfg.Autosave.Path != "" {
		return workflow.Store{Path: a.cfg.Autosave.Path}, nil
	}
	s, err := workflow.DefaultStore()
	if err != nil {
		return s, fmt.Errorf("auto-save location: %w", err)
	}
	return s, nil
}
