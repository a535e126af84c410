package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a command with args and captures stdout/stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "jstools", cmd.Use)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["startup-params"])
	assert.True(t, names["render-sql"])
	assert.True(t, names["check-props"])
	assert.True(t, names["check-savegame"])
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, NewRootCommand(), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "startup-params")
	assert.Contains(t, out, "render-sql")
}

func TestExitCodeError(t *testing.T) {
	err := &ExitCodeError{Code: 3, Message: "three cases failed"}
	assert.Equal(t, "three cases failed", err.Error())

	bare := &ExitCodeError{Code: 2}
	assert.Equal(t, "exit code 2", bare.Error())
}

func TestUnknownSubcommand(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "frobnicate")
	assert.Error(t, err)
}
