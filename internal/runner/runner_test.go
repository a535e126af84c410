//go:build !windows

package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These mirror the harness's own self-checks and expect a unix-style
// environment with sh, sleep, and false available.

func TestRunNaturalCompletion(t *testing.T) {
	r := &Runner{}

	res, err := r.Run(Invocation{Command: "sleep", Args: []string{"0.1"}})
	require.NoError(t, err)
	require.True(t, res.Exited())
	assert.Equal(t, 0, *res.ExitCode)
}

func TestRunNonzeroExit(t *testing.T) {
	r := &Runner{}

	res, err := r.Run(Invocation{Command: "false"})
	require.NoError(t, err)
	require.True(t, res.Exited())
	assert.NotEqual(t, 0, *res.ExitCode)
}

func TestRunTimeoutLeavesNoExitCode(t *testing.T) {
	r := &Runner{GraceDelay: 50 * time.Millisecond}

	start := time.Now()
	res, err := r.Run(Invocation{
		Command: "sleep",
		Args:    []string{"10"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, res.Exited(), "timed-out process must report no exit code")
	assert.Nil(t, res.ExitCode)

	// Signal is sent at the timeout boundary, not before: the call takes at
	// least timeout + grace delay, and nowhere near the sleep's 10 seconds.
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunCompletionBeforeTimeout(t *testing.T) {
	r := &Runner{}

	start := time.Now()
	res, err := r.Run(Invocation{
		Command: "sleep",
		Args:    []string{"0.1"},
		Timeout: 10 * time.Second,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.True(t, res.Exited())
	assert.Equal(t, 0, *res.ExitCode)
	// No grace delay on the natural-completion path.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunMissingExecutable(t *testing.T) {
	r := &Runner{}

	_, err := r.Run(Invocation{Command: "/prog_does_not_Exist"})
	assert.Error(t, err)
}

func TestRunCapturesStdoutAndStderr(t *testing.T) {
	r := &Runner{}

	res, err := r.Run(Invocation{
		Command: "sh",
		Args:    []string{"-c", "echo out-line; echo err-line 1>&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out-line\n", res.Stdout)
	assert.Equal(t, "err-line\n", res.Stderr)
	assert.Contains(t, res.Combined(), "out-line")
	assert.Contains(t, res.Combined(), "err-line")
}

func TestRunNormalizesLineEndings(t *testing.T) {
	r := &Runner{}

	res, err := r.Run(Invocation{
		Command: "sh",
		Args:    []string{"-c", `printf 'a\r\nb\rc\n'`},
	})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", res.Stdout)
}

func TestRunSignalExitIsNegativeSignalNumber(t *testing.T) {
	r := &Runner{}

	// The shell kills itself with SIGTERM (15); no harness timeout involved.
	res, err := r.Run(Invocation{
		Command: "sh",
		Args:    []string{"-c", "kill -TERM $$"},
	})
	require.NoError(t, err)
	require.True(t, res.Exited())
	assert.Equal(t, -15, *res.ExitCode)
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\n", normalizeNewlines("a\r\nb\r\n"))
	assert.Equal(t, "a\nb", normalizeNewlines("a\rb"))
	assert.Equal(t, "plain\n", normalizeNewlines("plain\n"))
	assert.Equal(t, "", normalizeNewlines(""))
}
