package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsettlers/jstools/internal/sqlrender"
)

const regenerateHint = "Must regenerate SQL script(s) from templates using render-sql"

// NewRenderSQLCommand creates the render-sql command
func NewRenderSQLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render-sql",
		Short: "Render SQL templates for a specific database type",
		Long: `Render a SQL DML/DDL template to one or more database types, substituting
{{token}} placeholders with per-dbtype values, or compare a template
against a previously rendered file to make sure the rendered copy is
still in sync.

With multiple comma-separated dbtypes the output or comparison filename
must contain %s, which is replaced by each dbtype in turn. Use "-" as
the input to read the template from standard input, or as the output to
write to standard output.

Exit status is 0 on success, 1 when rendering or comparison fails, and
2 for command-line problems.`,
		Args: cobra.NoArgs,
		RunE: runRenderSQL,
	}

	cmd.Flags().StringP("input", "i", "", "Template file to read, or - for stdin (required)")
	cmd.Flags().StringP("output", "o", "", "File to write, or - for stdout; %s is replaced by dbtype")
	cmd.Flags().StringP("compare", "c", "", "Previously rendered file to compare against; %s is replaced by dbtype")
	cmd.Flags().StringP("dbtype", "d", "", "Database type(s), comma-separated: "+strings.Join(sqlrender.KnownDBTypes, " "))
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("dbtype")

	return cmd
}

// runRenderSQL implements the render-sql command logic
func runRenderSQL(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	compare, _ := cmd.Flags().GetString("compare")
	dbtypeFlag, _ := cmd.Flags().GetString("dbtype")

	if (output == "") == (compare == "") {
		return &ExitCodeError{Code: 2, Message: "must use either -o or -c, not both"}
	}
	if compare == "-" {
		return &ExitCodeError{Code: 2, Message: "cannot use - with -c"}
	}

	dbtypes := strings.Split(dbtypeFlag, ",")
	for _, dbtype := range dbtypes {
		if !sqlrender.IsKnownDBType(dbtype) {
			return &ExitCodeError{Code: 2, Message: fmt.Sprintf(
				"dbtype %s not recognized, only: %s", dbtype, strings.Join(sqlrender.KnownDBTypes, " "))}
		}
	}

	// The same filename cannot serve several dbtypes without a %s slot.
	target := output
	if target == "" {
		target = compare
	}
	if tok, ok := sqlrender.ValidatePlaceholder(target); !ok {
		return &ExitCodeError{Code: 2, Message: fmt.Sprintf("unknown %% placeholder in filename: %s", tok)}
	}
	if len(dbtypes) > 1 && !strings.Contains(target, "%s") {
		return &ExitCodeError{Code: 2, Message: "with multiple dbtypes, filename must contain %s"}
	}

	for _, dbtype := range dbtypes {
		if err := renderOne(cmd, dbtype, input, output, compare); err != nil {
			return err
		}
	}
	return nil
}

func renderOne(cmd *cobra.Command, dbtype, input, output, compare string) error {
	sourceName := input
	if input == "-" {
		sourceName = "(standard input)"
	}
	r, err := sqlrender.NewRenderer(dbtype, sourceName)
	if err != nil {
		return &ExitCodeError{Code: 2, Message: err.Error()}
	}

	if compare != "" {
		if err := r.CompareFile(input, compare); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return &ExitCodeError{Code: 1, Message: regenerateHint}
		}
		return nil
	}

	if input == "-" || output == "-" {
		return renderStream(cmd, r, dbtype, input, output)
	}
	if err := r.RenderFile(input, output); err != nil {
		return &ExitCodeError{Code: 1, Message: err.Error()}
	}
	return nil
}

// renderStream handles the stdin/stdout cases RenderFile cannot.
func renderStream(cmd *cobra.Command, r *sqlrender.Renderer, dbtype, input, output string) error {
	var template string
	if input == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return &ExitCodeError{Code: 1, Message: fmt.Sprintf("error reading standard input: %v", err)}
		}
		template = string(data)
	} else {
		data, err := os.ReadFile(input)
		if err != nil {
			return &ExitCodeError{Code: 1, Message: fmt.Sprintf("error reading %s: %v", input, err)}
		}
		template = string(data)
	}

	out, err := r.Render(template)
	if err != nil {
		return &ExitCodeError{Code: 1, Message: err.Error()}
	}

	if output == "-" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	outPath := sqlrender.ExpandDBType(output, dbtype)
	if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
		return &ExitCodeError{Code: 1, Message: fmt.Sprintf("error writing %s: %v", outPath, err)}
	}
	return nil
}
