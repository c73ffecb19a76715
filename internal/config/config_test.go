package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Table.SampleRows)
	assert.Equal(t, 20, cfg.History.Limit)
	assert.False(t, cfg.Autosave.Enable)
}

func TestYAMLFile(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
input: employees.csv
workflow: senior.json
log:
  level: debug
table:
  delimiter: tab
  sample_rows: 10
  strict: true
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "employees.csv", cfg.Input)
	assert.Equal(t, "senior.json", cfg.Workflow)
	assert.Equal(t, "debug", cfg.Log.Level)

	opt := cfg.TableOptions()
	assert.Equal(t, '\t', opt.Delimiter)
	assert.Equal(t, 10, opt.SampleRows)
	assert.True(t, opt.Strict)
}

func TestTOMLFileAndEnv(t *testing.T) {
	path := writeConfig(t, "run.toml", `
output = "out.parquet"

[history]
limit = 5
`)
	t.Setenv("RULEFLOW_HISTORY_LIMIT", "7")
	t.Setenv("RULEFLOW_LOG_FORMAT", "json")
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "out.parquet", cfg.Output)
	assert.Equal(t, 7, cfg.History.Limit)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestErrors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "bad.yaml", "table:\n  delimiter: ab\n")
	_, err = Load(New(), path)
	assert.ErrorContains(t, err, "table.delimiter")
}
