package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsettlers/jstools/internal/savecheck"
)

// NewCheckSavegameCommand creates the check-savegame command
func NewCheckSavegameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-savegame [path...]",
		Short: "Validate the JSON syntax of saved-game files",
		Long: `Validate that saved-game files (*.game.json) are well-formed JSON.
Each path may be a savegame file or a directory to walk recursively.
Syntax errors are reported with their line and column. Exits nonzero
when any file fails to parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckSavegame,
	}
	return cmd
}

// runCheckSavegame implements the check-savegame command logic
func runCheckSavegame(cmd *cobra.Command, args []string) error {
	checkedTotal := 0
	badTotal := 0

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			checked, problems, err := savecheck.ValidateDir(path)
			if err != nil {
				return err
			}
			checkedTotal += len(checked)
			badTotal += len(problems)
			for _, file := range checked {
				if perr, ok := problems[file]; ok {
					fmt.Fprintln(cmd.OutOrStdout(), perr)
				}
			}
			continue
		}

		if !strings.HasSuffix(strings.ToLower(path), savecheck.GameFileSuffix) {
			return &ExitCodeError{Code: 2, Message: fmt.Sprintf("%s: not a %s file", path, savecheck.GameFileSuffix)}
		}
		checkedTotal++
		if err := savecheck.ValidateFile(path); err != nil {
			badTotal++
			fmt.Fprintln(cmd.OutOrStdout(), err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d savegames have problems\n", badTotal, checkedTotal)
	if badTotal > 0 {
		return &ExitCodeError{Code: 1}
	}
	return nil
}
