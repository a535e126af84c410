package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsettlers/jstools/internal/config"
)

func TestApplyStartupFlags(t *testing.T) {
	cmd := NewStartupParamsCommand()
	require.NoError(t, cmd.Flags().Set("temp-dir", "/tmp/jstest"))
	require.NoError(t, cmd.Flags().Set("port", "9999"))
	require.NoError(t, cmd.Flags().Set("timeout", "5s"))
	require.NoError(t, cmd.Flags().Set("history-db", "runs.db"))
	require.NoError(t, cmd.Flags().Set("log-level", "debug"))

	cfg := config.DefaultConfig()
	applyStartupFlags(cmd, cfg)

	assert.Equal(t, "/tmp/jstest", cfg.Harness.TempDir)
	assert.Equal(t, 9999, cfg.Harness.Port)
	assert.Equal(t, 5*time.Second, cfg.Harness.CaseTimeout)
	assert.Equal(t, "runs.db", cfg.Harness.HistoryDB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyStartupFlagsLeavesDefaults(t *testing.T) {
	cmd := NewStartupParamsCommand()

	cfg := config.DefaultConfig()
	applyStartupFlags(cmd, cfg)

	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Harness.Port, cfg.Harness.Port)
	assert.Equal(t, defaults.Harness.CaseTimeout, cfg.Harness.CaseTimeout)
	assert.Equal(t, defaults.Harness.JavaCommand, cfg.Harness.JavaCommand)
}

func TestStartupParamsMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [not, a, string"), 0644))

	_, _, err := execute(t, NewStartupParamsCommand(), "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestStartupParamsInvalidFlagValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, _, err := execute(t, NewStartupParamsCommand(), "--config", path, "--port", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port out of range")
}

func TestStartupParamsRejectsArgs(t *testing.T) {
	_, _, err := execute(t, NewStartupParamsCommand(), "extra-arg")
	assert.Error(t, err)
}
