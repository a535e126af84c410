// Package sqlrender renders SQL DML/DDL templates to specific DBMS types.
//
// Templates use {{token}} placeholders; each supported database type carries
// its own token values (timestamp column types, session-timezone setup and
// so on). Besides rendering, the package supports comparison mode: checking
// that a previously rendered file is still up to date with the template, so
// the build can fail when someone edits a rendered file instead of the
// template.
package sqlrender

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// KnownDBTypes are the database types with token tables, in the order the
// usage text lists them.
var KnownDBTypes = []string{"mysql", "postgres", "sqlite"}

// dbTokens maps each dbtype to its token values. Every dbtype must define
// the same token-name set; TestTokenNamesConsistent enforces that.
var dbTokens = map[string]map[string]string{
	"mysql": {
		"now":       "now()",
		"TIMESTAMP": "TIMESTAMP", // stored in table data as unix epoch seconds
		// 'NULL default null' needed to deactivate mysql's default settings for timestamp columns
		"TIMESTAMP_NULL":     "TIMESTAMP NULL DEFAULT null",
		"set_session_tz_utc": "SET TIME_ZONE='+0:00';  -- UTC not always set up in mysql as a TZ name",
	},
	"postgres": {
		"now":                "now()",
		"TIMESTAMP":          "TIMESTAMP WITHOUT TIME ZONE", // stored in table data as UTC
		"TIMESTAMP_NULL":     "TIMESTAMP WITHOUT TIME ZONE",
		"set_session_tz_utc": "SET TIME ZONE 'UTC';",
	},
	"sqlite": {
		"now":                "strftime('%s000', 'now')", // +000 for millis, not epoch seconds
		"TIMESTAMP":          "TIMESTAMP",
		"TIMESTAMP_NULL":     "TIMESTAMP",
		"set_session_tz_utc": "-- reminder: sqlite has no session timezone setting, only the server process's TZ",
	},
}

// unknownTokenRE finds any {{...}} left after substitution.
var unknownTokenRE = regexp.MustCompile(`(?s)\{\{.+?\}\}`)

// IsKnownDBType reports whether dbtype has a token table.
func IsKnownDBType(dbtype string) bool {
	_, ok := dbTokens[dbtype]
	return ok
}

// TokenNames returns the sorted token names for a dbtype, or nil if unknown.
func TokenNames(dbtype string) []string {
	tokens, ok := dbTokens[dbtype]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Renderer substitutes tokens for one dbtype.
type Renderer struct {
	dbtype string
	tokens map[string]string
}

// NewRenderer creates a Renderer for dbtype. sourceName becomes the value of
// the render_src token, so templates can record what they were generated
// from; use "(standard input)" when rendering a stream.
func NewRenderer(dbtype, sourceName string) (*Renderer, error) {
	base, ok := dbTokens[dbtype]
	if !ok {
		return nil, fmt.Errorf("dbtype %s not recognized, only: %s", dbtype, strings.Join(KnownDBTypes, " "))
	}

	tokens := make(map[string]string, len(base)+1)
	for name, value := range base {
		tokens[name] = value
	}
	tokens["render_src"] = sourceName

	return &Renderer{dbtype: dbtype, tokens: tokens}, nil
}

// Render substitutes all {{token}} occurrences in the template.
// An unrecognized token is an error naming the token.
func (r *Renderer) Render(template string) (string, error) {
	out := template
	for name, value := range r.tokens {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	if strings.Contains(out, "{{") {
		if tok := unknownTokenRE.FindString(out); tok != "" {
			return "", fmt.Errorf("unknown template token %s", tok)
		}
	}
	return out, nil
}

// RenderFile renders the template at inPath and writes the result to
// outPath. A "%s" in outPath is replaced by the dbtype.
func (r *Renderer) RenderFile(inPath, outPath string) error {
	outPath = ExpandDBType(outPath, r.dbtype)

	in, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("error rendering %s to %s: %w", inPath, outPath, err)
	}
	out, err := r.Render(string(in))
	if err != nil {
		return fmt.Errorf("error rendering %s to %s: %w", inPath, outPath, err)
	}
	if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("error rendering %s to %s: %w", inPath, outPath, err)
	}
	return nil
}

// CompareFile renders the template at inPath and checks the previously
// rendered file at compPath is identical. A "%s" in compPath is replaced by
// the dbtype. A difference is an error; the caller decides whether to print
// the regenerate hint.
func (r *Renderer) CompareFile(inPath, compPath string) error {
	compPath = ExpandDBType(compPath, r.dbtype)

	in, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("error comparing %s to %s: %w", inPath, compPath, err)
	}
	out, err := r.Render(string(in))
	if err != nil {
		return fmt.Errorf("error comparing %s to %s: %w", inPath, compPath, err)
	}
	comp, err := os.ReadFile(compPath)
	if err != nil {
		return fmt.Errorf("error comparing %s to %s: %w", inPath, compPath, err)
	}
	if out != string(comp) {
		return fmt.Errorf("%s contents differ from %s for dbtype %s", compPath, inPath, r.dbtype)
	}
	return nil
}

// ExpandDBType replaces a %s placeholder in a filename with the dbtype.
func ExpandDBType(path, dbtype string) string {
	return strings.ReplaceAll(path, "%s", dbtype)
}

// ValidatePlaceholder rejects filenames whose % escapes are anything other
// than %s. Returns the offending token like "%d" when invalid.
func ValidatePlaceholder(path string) (string, bool) {
	re := regexp.MustCompile(`%[^s]`)
	if tok := re.FindString(path); tok != "" {
		return tok, false
	}
	return "", true
}
