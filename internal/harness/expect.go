package harness

import (
	"fmt"
	"strings"
)

// expectKind discriminates the Expectation variants.
type expectKind int

const (
	expectNone expectKind = iota
	expectSubstring
	expectLines
)

// Expectation describes what must appear in a server's captured output for a
// test case to pass. It is a closed set of variants: no expectation, a single
// case-sensitive substring, or a set of exact lines that must all appear
// somewhere in the output in any order.
type Expectation struct {
	kind      expectKind
	substring string
	lines     []string
}

// NoExpectation matches any output.
func NoExpectation() Expectation {
	return Expectation{kind: expectNone}
}

// Contains expects the combined stdout+stderr to contain the given
// case-sensitive substring. The substring may span multiple lines.
func Contains(substring string) Expectation {
	return Expectation{kind: expectSubstring, substring: substring}
}

// HasLines expects every given line to appear verbatim as a complete line of
// the combined output, in any order. Duplicate lines collapse to a single
// requirement.
func HasLines(lines ...string) Expectation {
	return Expectation{kind: expectLines, lines: lines}
}

// IsEmpty reports whether this is the no-expectation variant.
func (e Expectation) IsEmpty() bool {
	return e.kind == expectNone
}

// Matches checks the combined captured output against the expectation.
func (e Expectation) Matches(combined string) bool {
	switch e.kind {
	case expectNone:
		return true
	case expectSubstring:
		return strings.Contains(combined, e.substring)
	case expectLines:
		remaining := make(map[string]bool, len(e.lines))
		for _, line := range e.lines {
			remaining[line] = true
		}
		for _, outline := range strings.Split(combined, "\n") {
			delete(remaining, outline)
		}
		return len(remaining) == 0
	}
	return false
}

// String renders the expectation for failure diagnostics.
func (e Expectation) String() string {
	switch e.kind {
	case expectNone:
		return "(none)"
	case expectSubstring:
		return fmt.Sprintf("%q", e.substring)
	case expectLines:
		return fmt.Sprintf("all lines of %q", e.lines)
	}
	return "(unknown)"
}
