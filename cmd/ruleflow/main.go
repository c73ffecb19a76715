// Command ruleflow applies declarative rule workflows to tabular files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wdm0006/ruleflow/internal/config"
	"github.com/wdm0006/ruleflow/internal/logging"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

var version = "0.1.0-dev"

// usageError marks bad arguments or flags; main exits with exitUsage for it.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "error:", err)
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitRuntime
}

// app carries what every command needs once flags and config are resolved.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-format":  "log.format",
	"input":       "input",
	"output":      "output",
	"no-header":   "table.no_header",
	"delimiter":   "table.delimiter",
	"sheet":       "table.sheet",
	"sample-rows": "table.sample_rows",
	"strict":      "table.strict",
	"autosave":    "autosave.enable",
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), log: zerolog.Nop(), stdout: stdout, stderr: stderr}
	var configPath string
	var showVersion bool

	root := &cobra.Command{
		Use:   "ruleflow",
		Short: "Apply declarative rule workflows to tables",
		Long: `ruleflow loads a table (CSV, TSV, JSON Lines, Parquet, Excel or ARFF),
applies an ordered workflow of filter, drop-column, sort, rename and
condition-group rules, and writes the result.

Workflows are JSON, YAML or TOML documents of the form {version, rules};
a bare JSON array of rules is read as a legacy version 0 document.

Examples:
  ruleflow run senior.json --input employees.csv --output senior.parquet
  ruleflow validate senior.yaml --input employees.csv
  ruleflow convert workflow senior.json senior.toml
  ruleflow profile employees.csv --top 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				return nil
			}
			return a.setup(cmd.Flags(), configPath)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(stdout, "ruleflow", version)
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "run configuration file (yaml, toml or json)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	root.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	root.AddCommand(
		newRunCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newProfileCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  noArgs,
			Run:   func(*cobra.Command, []string) { fmt.Fprintln(stdout, "ruleflow", version) },
		},
	)
	return root
}

// setup binds the command's flags over the config file and environment and
// builds the logger.
func (a *app) setup(flags *pflag.FlagSet, configPath string) error {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(a.v, configPath)
	if err != nil {
		return usageError{err}
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: a.stderr})
	if err != nil {
		return usageError{err}
	}
	a.cfg, a.log = cfg, log
	return nil
}

func addTableFlags(fs *pflag.FlagSet) {
	fs.Bool("no-header", false, "first row is data; columns are named col_0, col_1, ...")
	fs.String("delimiter", "", `CSV delimiter, a single character or "tab" (default: sniffed)`)
	fs.String("sheet", "", "Excel sheet (default: first sheet)")
	fs.Int("sample-rows", 0, "rows sampled to infer column kinds (default 100)")
	fs.Bool("strict", false, "fail on ragged records or cells that do not fit their inferred kind")
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unexpected argument %q", args[0])
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("want %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef("want at most %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}
