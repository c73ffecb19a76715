package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/ruleflow/pkg/io/tableio"
	"github.com/wdm0006/ruleflow/pkg/workflow"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workflow>",
		Short: "Check a workflow and list its rules",
		Long: `Decode a workflow, build every rule and print one line per rule. With
--input, also list the rules that would be skipped because the table lacks
their column.`,
		Args: exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error { return a.validate(args[0]) },
	}
	cmd.Flags().StringP("input", "i", "", "table to check column references against")
	addTableFlags(cmd.Flags())
	return cmd
}

func (a *app) validate(path string) error {
	doc, err := workflow.Load(path)
	if err != nil {
		return err
	}
	p, err := doc.Pipeline()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(a.stdout, "%s: version %d, %d rule(s)\n", path, doc.Version, len(p))
	for i, d := range p.Describe() {
		fmt.Fprintf(a.stdout, "%3d. %s\n", i+1, d)
	}
	if a.cfg.Input == "" {
		return nil
	}
	f, err := tableio.Load(a.cfg.Input, a.cfg.TableOptions())
	if err != nil {
		return err
	}
	_, skipped := p.Prune(f.Schema())
	for _, r := range skipped {
		fmt.Fprintf(a.stdout, "skipped on %s: %s\n", a.cfg.Input, r.Describe())
	}
	return nil
}
