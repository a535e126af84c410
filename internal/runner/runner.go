// Package runner launches external processes and reports how they ended.
//
// It exists for exactly one caller: the startup-params harness, which needs
// to start a server process, give it a bounded amount of wall-clock time,
// and then classify the outcome as "exited with a code" or "still running
// when the timeout fired". Termination on timeout is graceful (SIGTERM to
// the process group, not SIGKILL) so a server under test can release its
// listening socket before the next invocation tries to bind the same port.
package runner

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultGraceDelay is how long Run waits after sending the termination
// signal, allowing OS cleanup such as freeing the bound TCP port.
const DefaultGraceDelay = 1 * time.Second

// Invocation is one request to run an external process.
// Immutable once constructed; create a new Invocation per test case.
type Invocation struct {
	// Command is the binary or script to run.
	Command string

	// Args are the command-line arguments, in order.
	Args []string

	// Dir is the working directory for the process, or "" to inherit the
	// caller's. The server under test reads jsserver.properties from its
	// working directory, so the harness always sets this.
	Dir string

	// Timeout is the maximum wall-clock runtime, or 0 for no limit.
	Timeout time.Duration
}

// Result is the observed outcome of running an Invocation.
type Result struct {
	// ExitCode is the process exit code, or nil if the timeout elapsed and
	// the process was sent a termination signal instead of exiting on its
	// own. If a signal ended the process before the timeout, ExitCode is
	// the negative signal number.
	ExitCode *int

	// Stdout and Stderr hold the captured output streams with line endings
	// normalized to "\n". Capture may be incomplete if the process was
	// terminated mid-write; output buffering makes that unavoidable.
	Stdout string
	Stderr string
}

// Exited reports whether the process ended on its own before any timeout.
func (r *Result) Exited() bool {
	return r.ExitCode != nil
}

// Combined returns stdout and stderr joined with a newline, the surface the
// harness searches for expected output.
func (r *Result) Combined() string {
	return r.Stdout + "\n" + r.Stderr
}

// Runner executes Invocations one at a time.
// The zero value is usable; GraceDelay defaults to DefaultGraceDelay.
type Runner struct {
	// GraceDelay overrides the post-termination wait. Tests shorten it.
	GraceDelay time.Duration
}

// Run executes the invocation and blocks until it resolves.
//
// Without a timeout the process runs to natural completion and Result holds
// its real exit code. With a timeout, a waiter goroutine blocks on process
// completion while Run tracks elapsed time; whichever happens first wins.
// On timeout Run signals the process group, waits GraceDelay for OS cleanup,
// and returns a Result with a nil ExitCode. It does not re-verify that the
// process actually exited; a stubborn process may still hold the port
// (known limitation, inherited from the harness design).
//
// If the command cannot be located or started, Run returns an error rather
// than a Result: a broken environment is not a test outcome.
func (r *Runner) Run(inv Invocation) (*Result, error) {
	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Dir = inv.Dir

	var stdout, stderr syncBuffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", inv.Command, err)
	}

	// One waiter per bounded invocation, torn down when it resolves.
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	if inv.Timeout <= 0 {
		err := <-done
		return r.finish(cmd, stdout.String(), stderr.String(), err)
	}

	select {
	case err := <-done:
		return r.finish(cmd, stdout.String(), stderr.String(), err)
	case <-time.After(inv.Timeout):
	}

	// Timeout elapsed: ask the whole process group to terminate, then give
	// the OS a moment to clean up (in particular, to free the TCP port the
	// server bound) before the next test case starts.
	if err := terminateProcessGroup(cmd.Process); err != nil {
		// Process may have finished between the select and the signal.
		select {
		case werr := <-done:
			return r.finish(cmd, stdout.String(), stderr.String(), werr)
		default:
		}
	}
	time.Sleep(r.graceDelay())

	// Reap the process if it honored the signal; don't block if it didn't.
	select {
	case <-done:
	default:
	}

	return &Result{
		ExitCode: nil,
		Stdout:   normalizeNewlines(stdout.String()),
		Stderr:   normalizeNewlines(stderr.String()),
	}, nil
}

// finish builds the Result for a process that ended on its own.
func (r *Runner) finish(cmd *exec.Cmd, stdout, stderr string, waitErr error) (*Result, error) {
	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("failed to wait for %s: %w", cmd.Path, waitErr)
		}
	}

	ec := exitStatus(cmd.ProcessState)
	return &Result{
		ExitCode: &ec,
		Stdout:   normalizeNewlines(stdout),
		Stderr:   normalizeNewlines(stderr),
	}, nil
}

func (r *Runner) graceDelay() time.Duration {
	if r.GraceDelay > 0 {
		return r.GraceDelay
	}
	return DefaultGraceDelay
}

// normalizeNewlines converts CRLF and bare CR line endings to LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// syncBuffer is a bytes.Buffer safe for the exec copier goroutines to write
// while the timeout path reads a snapshot.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
