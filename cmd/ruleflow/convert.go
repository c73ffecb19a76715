package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wdm0006/ruleflow/pkg/io/tableio"
	"github.com/wdm0006/ruleflow/pkg/workflow"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert workflows or tables between formats",
	}
	wf := &cobra.Command{
		Use:   "workflow <in> <out>",
		Short: "Re-encode a workflow as JSON, YAML or TOML",
		Long: `Re-encode a workflow, picking both formats from the file extensions.
Legacy documents are written at the current version. TOML cannot hold null
filter values.`,
		Args: exactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := workflow.Convert(data, workflow.FormatFromPath(args[0]), workflow.FormatFromPath(args[1]))
			if err != nil {
				return err
			}
			a.log.Info().Str("from", args[0]).Str("to", args[1]).Msg("workflow converted")
			return os.WriteFile(args[1], out, 0o644)
		},
	}
	tbl := &cobra.Command{
		Use:   "table <in> <out>",
		Short: "Copy a table into another format",
		Args:  exactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			opt := a.cfg.TableOptions()
			f, err := tableio.Load(args[0], opt)
			if err != nil {
				return err
			}
			if err := tableio.Save(f, args[1], opt); err != nil {
				return err
			}
			a.log.Info().Str("from", args[0]).Str("to", args[1]).Int("rows", f.Rows()).Msg("table converted")
			return nil
		},
	}
	addTableFlags(tbl.Flags())
	cmd.AddCommand(wf, tbl)
	return cmd
}
