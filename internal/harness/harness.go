// Package harness runs the JSettlers server startup-parameter functional
// tests: launch the server JAR with varying command-line and
// jsserver.properties configurations, classify whether it kept running or
// exited, and check expected diagnostic output.
//
// The harness owns two shared resources for the whole run: the
// jsserver.properties path in the temp directory and the server's default
// TCP port. Cases therefore execute strictly one at a time, in declared
// order; preflight verifies the port is free and takes a file lock so two
// harness runs cannot interleave.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsettlers/jstools/internal/config"
	"github.com/jsettlers/jstools/internal/filelock"
	"github.com/jsettlers/jstools/internal/history"
	"github.com/jsettlers/jstools/internal/logger"
	"github.com/jsettlers/jstools/internal/runner"
)

// PropsFileName is the properties file the server reads from its working
// directory at startup.
const PropsFileName = "jsserver.properties"

// lockFileName guards against two harness runs sharing the temp dir and port.
const lockFileName = "startup-params.lock"

// Run is the context for one harness run. It replaces what would otherwise
// be ambient globals: the failure counter, the resolved JAR path, and the
// shared properties-file path all live here and are threaded through each
// test case.
type Run struct {
	// ID identifies this run in the history database.
	ID uuid.UUID

	cfg    config.HarnessConfig
	log    *logger.ConsoleLogger
	out    io.Writer
	runner *runner.Runner
	store  *history.Store
	lock   *filelock.RunLock

	// jarPath is the server JAR resolved by Preflight, relative to TempDir.
	jarPath string

	executed int
	failed   int
}

// NewRun creates a harness run context. Pass/fail lines go to out; log gets
// diagnostics. The history store is optional (nil disables recording).
func NewRun(cfg config.HarnessConfig, log *logger.ConsoleLogger, out io.Writer, store *history.Store) *Run {
	return &Run{
		ID:     uuid.New(),
		cfg:    cfg,
		log:    log,
		out:    out,
		runner: &runner.Runner{GraceDelay: cfg.GraceDelay},
		store:  store,
	}
}

// FailedCount returns the number of failed cases so far.
func (r *Run) FailedCount() int {
	return r.failed
}

// propsPath is the fixed properties-file path shared by every case.
func (r *Run) propsPath() string {
	return filepath.Join(r.cfg.TempDir, PropsFileName)
}

// Execute runs preflight, then every case in declared order, then prints a
// summary. Returns the failed-case count. A non-nil error means the run
// aborted (broken environment or declaration-time misuse), not that cases
// failed.
func (r *Run) Execute(ctx context.Context, cases []Case) (int, error) {
	// Reject declaration-time misuse before anything runs.
	for i, c := range cases {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("case %d: %w", i+1, err)
		}
	}

	if err := r.Preflight(); err != nil {
		return 0, err
	}
	defer r.Close()

	if r.store != nil {
		if err := r.store.BeginRun(ctx, r.ID.String(), time.Now()); err != nil {
			r.log.Warnf("history: %v", err)
		}
	}

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return r.failed, err
		}
		if _, err := r.RunCase(ctx, c); err != nil {
			return r.failed, err
		}
	}

	fmt.Fprintf(r.out, "\n%d test cases run, %d failed\n", r.executed, r.failed)

	if r.store != nil {
		if err := r.store.FinishRun(ctx, r.ID.String(), r.executed, r.failed); err != nil {
			r.log.Warnf("history: %v", err)
		}
	}

	return r.failed, nil
}

// RunCase executes one test case and reports whether it passed.
// An error means the harness itself could not run the case (missing java,
// unwritable temp dir); per-case mismatches only count toward FailedCount.
func (r *Run) RunCase(ctx context.Context, c Case) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	var prnPfile string
	if c.PropsFile != nil {
		prnPfile = "; with " + PropsFileName
		if err := r.writePropsFile(c.PropsFile); err != nil {
			return false, err
		}
	} else {
		prnPfile = "; no " + PropsFileName
		if err := r.removePropsFile(); err != nil {
			return false, err
		}
	}

	args := []string{"-jar", r.jarPath}
	if c.CmdlineParams != "" {
		args = append(args, strings.Fields(c.CmdlineParams)...)
	}

	fmt.Fprintf(r.out, "Test: %s %s%s\n", r.cfg.JavaCommand, strings.Join(args, " "), prnPfile)

	start := time.Now()
	res, err := r.runner.Run(runner.Invocation{
		Command: r.cfg.JavaCommand,
		Args:    args,
		Dir:     r.cfg.TempDir,
		Timeout: r.cfg.CaseTimeout,
	})
	duration := time.Since(start)
	if err != nil {
		// Executable not found or not startable: broken environment, fatal.
		return false, err
	}

	didStartup := !res.Exited()
	var prnStartup string
	if didStartup {
		prnStartup = "(started up)"
	} else {
		prnStartup = fmt.Sprintf("(exited: %d)", *res.ExitCode)
	}

	pass := didStartup == c.ShouldStartup
	if !c.Expect.IsEmpty() && !didStartup {
		if !c.Expect.Matches(res.Combined()) {
			pass = false
			prnStartup += " -- missing expected output"
		}
	}

	if pass {
		fmt.Fprintf(r.out, "%s -> ok\n", prnStartup)
	} else {
		r.failed++
		fmt.Fprintf(r.out, "%s -> FAIL\n", prnStartup)
		if !c.Expect.IsEmpty() && !didStartup {
			fmt.Fprintf(r.out, "EXPECTED: %s\n", c.Expect)
		}
		fmt.Fprintf(r.out, "STDOUT: %s\n", res.Stdout)
		fmt.Fprintf(r.out, "STDERR: %s\n", res.Stderr)
		if c.PropsFile != nil {
			fmt.Fprintf(r.out, "%s contents:\n", PropsFileName)
			for _, line := range c.PropsFile {
				fmt.Fprintln(r.out, line)
			}
		}
		fmt.Fprintln(r.out)
	}
	r.executed++

	r.recordCase(ctx, c, res, didStartup, pass, duration)

	return pass, nil
}

// recordCase writes the case outcome to the history store, best-effort.
func (r *Run) recordCase(ctx context.Context, c Case, res *runner.Result, didStartup, pass bool, duration time.Duration) {
	if r.store == nil {
		return
	}

	cr := &history.CaseResult{
		RunID:         r.ID.String(),
		Seq:           r.executed,
		Description:   c.Describe(r.jarPath),
		CmdlineParams: c.CmdlineParams,
		DidStartup:    didStartup,
		ExitCode:      res.ExitCode,
		Passed:        pass,
		Duration:      duration,
	}
	if c.PropsFile != nil {
		contents := strings.Join(c.PropsFile, "\n") + "\n"
		cr.PropsFile = &contents
	}
	if !pass {
		cr.Output = res.Combined()
	}

	if err := r.store.RecordCase(ctx, cr); err != nil {
		r.log.Warnf("history: %v", err)
	}
}

// writePropsFile writes the properties file the next invocation will read.
// One key=value assignment per line; the write is atomic so the server never
// sees a partial file.
func (r *Run) writePropsFile(lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := filelock.AtomicWrite(r.propsPath(), []byte(sb.String())); err != nil {
		return fmt.Errorf("write %s: %w", PropsFileName, err)
	}
	return nil
}

// removePropsFile deletes the properties file so the server sees no custom
// properties. Missing file is fine.
func (r *Run) removePropsFile() error {
	if err := os.Remove(r.propsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", PropsFileName, err)
	}
	return nil
}

// Close releases the run lock and deletes the leftover properties file.
func (r *Run) Close() {
	if err := r.removePropsFile(); err != nil {
		r.log.Warnf("cleanup: %v", err)
	}
	if r.lock != nil {
		if err := r.lock.Unlock(); err != nil {
			r.log.Warnf("cleanup: %v", err)
		}
		r.lock = nil
	}
}
