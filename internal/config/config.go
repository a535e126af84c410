// Package config loads jstools configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file location relative to the working
// directory, checked when no --config flag is given.
const DefaultConfigPath = ".jstools/config.yaml"

// HarnessConfig holds settings for the startup-params functional test harness.
type HarnessConfig struct {
	// Port is the server's well-known default TCP port, probed before the
	// run to verify no server is already listening.
	Port int `yaml:"port"`

	// CaseTimeout is the maximum wall-clock time a single server invocation
	// may run before the harness sends it a termination signal.
	CaseTimeout time.Duration `yaml:"case_timeout"`

	// GraceDelay is how long to wait after sending the termination signal,
	// allowing OS cleanup such as freeing the TCP port.
	GraceDelay time.Duration `yaml:"grace_delay"`

	// TempDir is the working directory for test cases; jsserver.properties
	// is written to and deleted from this directory.
	TempDir string `yaml:"temp_dir"`

	// JarPaths are candidate locations for the pre-built server JAR,
	// relative to TempDir. Entries may contain '?' glob wildcards; the
	// newest matching file wins.
	JarPaths []string `yaml:"jar_paths"`

	// JavaCommand is the JVM launcher binary. Defaults to "java" from PATH.
	JavaCommand string `yaml:"java_command"`

	// HistoryDB is the SQLite database path for recording run results.
	// Empty disables history recording.
	HistoryDB string `yaml:"history_db"`
}

// Config represents jstools configuration options.
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Harness contains startup-params harness configuration
	Harness HarnessConfig `yaml:"harness"`
}

// DefaultConfig returns a Config with the values the original test
// environment assumes: port 8880, a 20 second per-case timeout, and the two
// build-output locations for the server JAR.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Harness: HarnessConfig{
			Port:        8880,
			CaseTimeout: 20 * time.Second,
			GraceDelay:  1 * time.Second,
			TempDir:     "../../test/tmp",
			JarPaths: []string{
				"../../../target/JSettlersServer.jar",
				"../../../build/libs/JSettlersServer-?.?.??.jar",
			},
			JavaCommand: "java",
			HistoryDB:   "",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from dir/.jstools/config.yaml,
// falling back to defaults when the file is absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultConfigPath))
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c.Harness.Port <= 0 || c.Harness.Port > 65535 {
		return fmt.Errorf("harness port out of range: %d", c.Harness.Port)
	}
	if c.Harness.CaseTimeout <= 0 {
		return fmt.Errorf("harness case_timeout must be positive, got %v", c.Harness.CaseTimeout)
	}
	if c.Harness.GraceDelay < 0 {
		return fmt.Errorf("harness grace_delay must not be negative, got %v", c.Harness.GraceDelay)
	}
	if len(c.Harness.JarPaths) == 0 {
		return fmt.Errorf("harness jar_paths must not be empty")
	}
	if c.Harness.JavaCommand == "" {
		return fmt.Errorf("harness java_command must not be empty")
	}
	return nil
}
