//go:build windows

package runner

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on Windows; there is no process group to set up.
func setProcessGroup(cmd *exec.Cmd) {}

// terminateProcessGroup kills the process. Windows has no SIGTERM equivalent
// the JVM would handle gracefully, so this falls back to a hard kill.
func terminateProcessGroup(p *os.Process) error {
	return p.Kill()
}

// exitStatus extracts the exit code from a finished process.
func exitStatus(ps *os.ProcessState) int {
	return ps.ExitCode()
}
