// Package config loads the ruleflow run configuration from a file, the
// environment (RULEFLOW_*) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/wdm0006/ruleflow/pkg/io/tableio"
)

const EnvPrefix = "RULEFLOW"

// Config holds the configuration for a run.
type Config struct {
	Input    string `mapstructure:"input"`
	Output   string `mapstructure:"output"`
	Workflow string `mapstructure:"workflow"`
	Log      struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Table struct {
		NoHeader   bool   `mapstructure:"no_header"`
		Delimiter  string `mapstructure:"delimiter"`
		Sheet      string `mapstructure:"sheet"`
		SampleRows int    `mapstructure:"sample_rows"`
		Strict     bool   `mapstructure:"strict"`
	} `mapstructure:"table"`
	History struct {
		Limit int `mapstructure:"limit"`
	} `mapstructure:"history"`
	Autosave struct {
		Enable bool   `mapstructure:"enable"`
		Path   string `mapstructure:"path"`
	} `mapstructure:"autosave"`
}

// New returns a viper instance with defaults and environment binding set.
// Flags may be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("workflow", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("table.no_header", false)
	v.SetDefault("table.delimiter", "")
	v.SetDefault("table.sheet", "")
	v.SetDefault("table.sample_rows", 100)
	v.SetDefault("table.strict", false)
	v.SetDefault("history.limit", 20)
	v.SetDefault("autosave.enable", false)
	v.SetDefault("autosave.path", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, or when path is empty looks for
// ruleflow.{yaml,toml,json} in the working directory and the user config
// directory. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ruleflow")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ruleflow"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.delimiter(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TableOptions converts the table section for tableio.
func (c *Config) TableOptions() tableio.Options {
	d, _ := c.delimiter()
	return tableio.Options{
		NoHeader:   c.Table.NoHeader,
		Delimiter:  d,
		Sheet:      c.Table.Sheet,
		SampleRows: c.Table.SampleRows,
		Strict:     c.Table.Strict,
	}
}

// delimiter accepts a single character or the names "tab", "\t".
func (c *Config) delimiter() (rune, error) {
	s := c.Table.Delimiter
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("table.delimiter %q: want a single character", s)
	}
	return r, nil
}
