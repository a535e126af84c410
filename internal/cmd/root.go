// Package cmd wires the jstools subcommands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitCodeError carries a specific process exit code out of a subcommand.
// The original scripts distinguish, for example, "render failed" (1) from
// "bad command line" (2), and the harness exits with its failed-case count.
type ExitCodeError struct {
	Code    int
	Message string
}

func (e *ExitCodeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewRootCommand creates and returns the root cobra command for jstools
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jstools",
		Short: "Developer tooling for the JSettlers server project",
		Long: `jstools bundles the JSettlers project's peripheral developer tooling:
the functional test harness for server startup parameters, the SQL
template renderer, and syntax checkers for localization properties
files and JSON savegames.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewStartupParamsCommand())
	cmd.AddCommand(NewRenderSQLCommand())
	cmd.AddCommand(NewCheckPropsCommand())
	cmd.AddCommand(NewCheckSavegameCommand())

	return cmd
}
