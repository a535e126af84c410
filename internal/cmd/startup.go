package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsettlers/jstools/internal/config"
	"github.com/jsettlers/jstools/internal/harness"
	"github.com/jsettlers/jstools/internal/history"
	"github.com/jsettlers/jstools/internal/logger"
)

// NewStartupParamsCommand creates the startup-params command
func NewStartupParamsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "startup-params",
		Short: "Run the server startup-parameter functional tests",
		Long: `Run the functional test suite for JSettlersServer startup parameters,
covering command-line params and jsserver.properties files.

Each test case launches the pre-built server JAR with a specific
configuration, waits up to the case timeout, and classifies the outcome:
a server that keeps running versus one that exits, optionally checking
for expected diagnostic output. Cases run strictly in declared order and
share the temp dir's jsserver.properties path and the server's default
TCP port, so only one harness run may be active at a time.

Preflight checks (temp dir, built server JAR, working java, free port)
abort the run with exit code 1 before any case executes. Otherwise the
exit code is the number of failed test cases.

Configuration is loaded from .jstools/config.yaml if present.
CLI flags override configuration file settings.`,
		Args: cobra.NoArgs,
		RunE: runStartupParams,
	}

	cmd.Flags().String("config", "", "Path to config file (default: "+config.DefaultConfigPath+")")
	cmd.Flags().String("temp-dir", "", "Working directory for test cases (holds jsserver.properties)")
	cmd.Flags().Int("port", 0, "Server's default TCP port to probe before the run")
	cmd.Flags().Duration("timeout", 0, "Per-case timeout before the server is signaled (e.g. 20s)")
	cmd.Flags().String("java", "", "JVM launcher binary (default: java from PATH)")
	cmd.Flags().String("history-db", "", "SQLite database for run history (empty = disabled)")
	cmd.Flags().String("log-level", "", "Log verbosity: debug, info, warn, error")

	return cmd
}

// runStartupParams implements the startup-params command logic
func runStartupParams(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	applyStartupFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	var store *history.Store
	if cfg.Harness.HistoryDB != "" {
		store, err = history.NewStore(cfg.Harness.HistoryDB)
		if err != nil {
			// History is best-effort; a broken database must not block testing.
			log.Warnf("history disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	cases, err := harness.Suite()
	if err != nil {
		return err
	}

	run := harness.NewRun(cfg.Harness, log, cmd.OutOrStdout(), store)
	log.Infof("run %s: %d test cases, timeout %v, port %d",
		run.ID, len(cases), cfg.Harness.CaseTimeout, cfg.Harness.Port)

	failed, err := run.Execute(cmd.Context(), cases)
	if err != nil {
		if errors.Is(err, harness.ErrPreflightFailed) {
			return &ExitCodeError{Code: 1, Message: "*** Exiting due to missing required conditions. ***"}
		}
		return err
	}
	if failed > 0 {
		return &ExitCodeError{Code: failed, Message: fmt.Sprintf("Total failure count: %d", failed)}
	}
	return nil
}

// applyStartupFlags merges explicitly-set CLI flags over the loaded config.
func applyStartupFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("temp-dir") {
		v, _ := cmd.Flags().GetString("temp-dir")
		cfg.Harness.TempDir = v
	}
	if cmd.Flags().Changed("port") {
		v, _ := cmd.Flags().GetInt("port")
		cfg.Harness.Port = v
	}
	if cmd.Flags().Changed("timeout") {
		v, _ := cmd.Flags().GetDuration("timeout")
		cfg.Harness.CaseTimeout = v
	}
	if cmd.Flags().Changed("java") {
		v, _ := cmd.Flags().GetString("java")
		cfg.Harness.JavaCommand = v
	}
	if cmd.Flags().Changed("history-db") {
		v, _ := cmd.Flags().GetString("history-db")
		cfg.Harness.HistoryDB = v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		cfg.LogLevel = v
	}
}
