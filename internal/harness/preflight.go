package harness

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/jsettlers/jstools/internal/filelock"
	"github.com/jsettlers/jstools/internal/runner"
)

// ErrPreflightFailed indicates the test environment is unusable; the run
// aborts before any case executes.
var ErrPreflightFailed = errors.New("preflight check failed")

// portProbeTimeout bounds the TCP liveness probe against the server port.
const portProbeTimeout = 1 * time.Second

// javaVersionRE matches the banner "java -version" prints to stderr.
var javaVersionRE = regexp.MustCompile(`(?i)(openjdk|java) version`)

// Preflight checks the environment before any case runs:
//
//   - the temp dir exists, and jsserver.properties there (if present) is a
//     regular file
//   - the pre-built server JAR is found among the configured search paths
//   - "java -version" runs and identifies itself
//   - nothing is already listening on the server's default TCP port
//   - no other harness run holds the temp dir's lock file
//
// Every problem found is reported individually before the combined
// ErrPreflightFailed is returned.
func (r *Run) Preflight() error {
	allOK := true

	if info, err := os.Stat(r.cfg.TempDir); err != nil || !info.IsDir() {
		allOK = false
		r.log.Errorf("Missing required directory %s", r.cfg.TempDir)
	} else {
		if pinfo, err := os.Stat(r.propsPath()); err == nil && !pinfo.Mode().IsRegular() {
			allOK = false
			r.log.Errorf("%s exists but is not a normal file: Remove it", r.propsPath())
		}
	}

	jarPath, err := resolveServerJar(r.cfg.TempDir, r.cfg.JarPaths)
	if err != nil {
		allOK = false
		r.log.Errorf("Must build server JAR first: %v", err)
	} else {
		r.jarPath = jarPath
	}

	if err := r.checkJava(); err != nil {
		allOK = false
		r.log.Errorf("%v", err)
	}

	if err := checkPortFree(r.cfg.Port); err != nil {
		allOK = false
		r.log.Errorf("%v", err)
	}

	if allOK {
		// Lock last, so a doomed run doesn't hold the lock while reporting.
		lock := filelock.NewRunLock(filepath.Join(r.cfg.TempDir, lockFileName))
		acquired, err := lock.TryLock()
		switch {
		case err != nil:
			allOK = false
			r.log.Errorf("Failed to acquire run lock: %v", err)
		case !acquired:
			allOK = false
			r.log.Errorf("Another startup-params run already holds %s", lock.Path())
		default:
			r.lock = lock
		}
	}

	if !allOK {
		return ErrPreflightFailed
	}
	return nil
}

// checkJava verifies the configured JVM launcher runs and prints a
// recognizable version banner. No need to parse the version number.
func (r *Run) checkJava() error {
	res, err := r.runner.Run(runner.Invocation{
		Command: r.cfg.JavaCommand,
		Args:    []string{"-version"},
	})
	if err != nil {
		return fmt.Errorf("Failed to run: %s -version: %w", r.cfg.JavaCommand, err)
	}
	if *res.ExitCode != 0 {
		return fmt.Errorf("Failed to run: %s -version (exit %d)", r.cfg.JavaCommand, *res.ExitCode)
	}
	if !javaVersionRE.MatchString(res.Stdout + " " + res.Stderr) {
		return fmt.Errorf("%s -version returned 0, but output didn't include the string: java version (output %q, stderr %q)",
			r.cfg.JavaCommand, res.Stdout, res.Stderr)
	}
	return nil
}

// checkPortFree probes the server's well-known port on loopback. A refused
// or failed connection is the success outcome: the port is free. A
// successful connect means a server is already running, which would make
// every case's port-bind behavior meaningless.
func checkPortFree(port int) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, portProbeTimeout)
	if err != nil {
		return nil
	}
	conn.Close()
	return fmt.Errorf("Test environment cannot already have a server running on tcp port %d", port)
}

// resolveServerJar searches the candidate paths (relative to baseDir) for
// the pre-built server JAR. Entries containing '?' are glob patterns; the
// most recently modified match wins.
func resolveServerJar(baseDir string, patterns []string) (string, error) {
	for _, rel := range patterns {
		pattern := rel
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, rel)
		}

		if !hasGlobMeta(pattern) {
			if info, err := os.Stat(pattern); err == nil && info.Mode().IsRegular() {
				return relativeToBase(baseDir, pattern, rel), nil
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		newest := ""
		var newestMod time.Time
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if newest == "" || info.ModTime().After(newestMod) {
				newest = m
				newestMod = info.ModTime()
			}
		}
		if newest != "" {
			return relativeToBase(baseDir, newest, newest), nil
		}
	}
	return "", fmt.Errorf("file not found among %q", patterns)
}

// hasGlobMeta reports whether a path contains glob wildcards.
func hasGlobMeta(path string) bool {
	for _, ch := range path {
		if ch == '?' || ch == '*' || ch == '[' {
			return true
		}
	}
	return false
}

// relativeToBase re-expresses an absolute match relative to baseDir, since
// the invocation runs with baseDir as its working directory. Falls back to
// the absolute path if no relative form exists.
func relativeToBase(baseDir, abs, fallback string) string {
	if rel, err := filepath.Rel(baseDir, abs); err == nil {
		return rel
	}
	if filepath.IsAbs(abs) {
		return abs
	}
	return fallback
}
