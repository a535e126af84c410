// Package savecheck validates the JSON syntax of saved-game files.
//
// The server writes savegames as *.game.json. This check only parses the
// files; the game data inside stays opaque to the tooling, the same way the
// server binary itself does.
package savecheck

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GameFileSuffix identifies saved-game files.
const GameFileSuffix = ".game.json"

// ValidateFile parses the file as JSON. A syntax error reports the 1-based
// line and column of the first problem.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		if serr, ok := err.(*json.SyntaxError); ok {
			line, col := offsetToLineCol(data, serr.Offset)
			return fmt.Errorf("%s: line %d column %d: %v", path, line, col, serr)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateDir walks root and validates every *.game.json file.
// Returns the paths checked and the first-error-per-file map; an empty map
// means every savegame parsed.
func ValidateDir(root string) ([]string, map[string]error, error) {
	var checked []string
	problems := make(map[string]error)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), GameFileSuffix) {
			return nil
		}
		checked = append(checked, path)
		if verr := ValidateFile(path); verr != nil {
			problems[path] = verr
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return checked, problems, nil
}

// offsetToLineCol converts a byte offset into 1-based line and column.
func offsetToLineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
