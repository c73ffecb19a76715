package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/ruleflow/pkg/io/tableio"
	"github.com/wdm0006/ruleflow/pkg/profile"
)

func newProfileCmd(a *app) *cobra.Command {
	var top int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profile <table>",
		Short: "Print per-column statistics of a table",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := tableio.Load(args[0], a.cfg.TableOptions())
			if err != nil {
				return err
			}
			c := profile.Of(f, top)
			if !asJSON {
				fmt.Fprintf(a.stdout, "%s: %d rows\n", args[0], f.Rows())
				fmt.Fprint(a.stdout, c.ReportText())
				return nil
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c.ReportJSON())
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "most frequent text values to list per column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	addTableFlags(cmd.Flags())
	return cmd
}
