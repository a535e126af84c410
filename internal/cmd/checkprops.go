package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsettlers/jstools/internal/propscheck"
)

// NewCheckPropsCommand creates the check-props command
func NewCheckPropsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-props [path...]",
		Short: "Check .properties files for missing MessageFormat escapes",
		Long: `Check localization .properties files for single quotes and curly braces
that java MessageFormat.format requires to be escaped. Only values
containing positional arguments like {0} need escaping; a missing
escape there breaks string formatting at runtime for that one locale.

Each path may be a .properties file or a directory, which is searched
recursively. Exits nonzero when any file has a fault.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckProps,
	}
	return cmd
}

// runCheckProps implements the check-props command logic
func runCheckProps(cmd *cobra.Command, args []string) error {
	files, err := collectPropsFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &ExitCodeError{Code: 2, Message: "no .properties files found"}
	}

	badFiles := 0
	for _, path := range files {
		faults, err := propscheck.CheckFile(path)
		if err != nil {
			return err
		}
		if len(faults) == 0 {
			continue
		}
		badFiles++
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", path)
		for _, f := range faults {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d files checked have problems\n", badFiles, len(files))
	if badFiles > 0 {
		return &ExitCodeError{Code: 1}
	}
	return nil
}

// collectPropsFiles expands each argument into .properties file paths,
// walking directories recursively. The result is sorted for stable output.
func collectPropsFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		if strings.HasSuffix(path, ".properties") {
			files = append(files, path)
			continue
		}
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".properties") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
