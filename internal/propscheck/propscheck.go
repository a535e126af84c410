// Package propscheck finds missing escape characters in localization
// .properties files.
//
// Values formatted through java MessageFormat.format must escape single
// quotes and open curly braces once the value contains positional arguments
// ({0}, {1}, ...): an unescaped ' silently eats the following placeholder
// and an unescaped { breaks formatting at runtime, typically only for the
// one locale whose translator forgot the escape. Checking the files at build
// time is much cheaper than finding that in production.
package propscheck

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	positionalArgRE = regexp.MustCompile(`\{\d`)

	// ' that is not doubled ('') and does not escape a brace ('{)
	badQuoteRE = regexp.MustCompile(`(^'[^'{])|([^']'[^'{])`)

	// { that does not start a positional arg and is not escaped by '
	badBraceRE = regexp.MustCompile(`([^']\{\D)|([^']\{)$`)

	emptyLineRE   = regexp.MustCompile(`^\s*$`)
	commentLineRE = regexp.MustCompile(`^\s*#`)
	dataLineRE    = regexp.MustCompile(`^\s*([^=]+?)\s*=\s*(.*?)$`)
)

// Fault is one missing-escape defect: the 1-based line number, the 0-based
// position within the value, and the property key.
type Fault struct {
	Line int
	Col  int
	Key  string
}

// String renders the fault for diagnostics.
func (f Fault) String() string {
	return fmt.Sprintf("line %d char %d: %s", f.Line, f.Col, f.Key)
}

// CheckValue tests one property value against the MessageFormat escaping
// rules. Returns -1 when the value is fine, otherwise the position of the
// first quote or curly brace that looks to be missing its escape character.
// Values without positional arguments need no escaping at all.
func CheckValue(value string) int {
	if !positionalArgRE.MatchString(value) {
		return -1
	}

	if loc := badQuoteRE.FindStringIndex(value); loc != nil {
		pos := loc[0]
		if value[pos] != '\'' {
			// match started one char before the quote
			pos++
		}
		return pos
	}
	if loc := badBraceRE.FindStringIndex(value); loc != nil {
		return loc[0]
	}

	return -1
}

// CheckLines tests each name=value line of a properties file. Lines follow
// the java.util.Properties format without end-of-line continuations; blank
// and #-comment lines are skipped. A line that cannot be parsed at all is
// itself a fault. Returns nil when everything is clean.
func CheckLines(lines []string) []Fault {
	var faults []Fault

	for i, line := range lines {
		if emptyLineRE.MatchString(line) || commentLineRE.MatchString(line) {
			continue
		}
		m := dataLineRE.FindStringSubmatch(line)
		if m == nil {
			faults = append(faults, Fault{Line: i + 1, Col: 0, Key: "(Cannot parse this line)"})
			continue
		}
		key, value := m[1], m[2]
		if idx := CheckValue(value); idx != -1 {
			faults = append(faults, Fault{Line: i + 1, Col: idx, Key: key})
		}
	}

	return faults
}

// CheckFile reads a .properties file and checks every line.
// Properties files are ISO-8859-1 encoded per the java spec.
func CheckFile(path string) ([]Fault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := DecodeLatin1(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return CheckLines(strings.Split(text, "\n")), nil
}

// DecodeLatin1 converts ISO-8859-1 bytes to a UTF-8 string.
// Every byte maps directly to the code point of the same value.
func DecodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
