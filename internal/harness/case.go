package harness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadCase indicates a test case declared with an unusable combination of
// fields. This is a usage error by the case author, caught before any case
// runs, never a test failure.
var ErrBadCase = errors.New("invalid test case")

// Case is one startup-parameter scenario for the server under test.
//
// Cases run strictly sequentially, in declared order. Later cases may depend
// on filesystem state left by earlier ones (the shared jsserver.properties
// path is rewritten or deleted per case, not isolated), so the suite must
// never be reordered or parallelized.
type Case struct {
	// ShouldStartup is true if the server should start and keep running
	// indefinitely with these parameters, false if they should make startup
	// fail, exit quickly, or return nonzero.
	ShouldStartup bool

	// CmdlineParams are optional extra command-line parameters,
	// space-separated, appended after "-jar <server-jar>".
	CmdlineParams string

	// PropsFile holds lines to write to jsserver.properties before the
	// invocation, or nil to delete the file so the server sees no custom
	// properties. An empty non-nil slice writes an empty file, which the
	// server treats the same as no file.
	PropsFile []string

	// Expect describes output that must appear when the server exits.
	// Use only ASCII in expected strings; the server reads properties as
	// ISO-8859-1.
	Expect Expectation
}

// Validate rejects declaration-time misuse.
//
// ShouldStartup combined with an output expectation is forbidden by
// construction: when the timeout kills a still-running server, stream
// buffering may have dropped some or all of its output, so searching for
// expected text would fail even though the server printed it.
func (c Case) Validate() error {
	if c.ShouldStartup && !c.Expect.IsEmpty() {
		return fmt.Errorf("%w: cannot combine ShouldStartup with an output expectation", ErrBadCase)
	}
	return nil
}

// Describe renders the case for the per-case "Test:" line and history
// records: the java command line plus whether a properties file is present.
func (c Case) Describe(jarPath string) string {
	var sb strings.Builder
	sb.WriteString("java -jar ")
	sb.WriteString(jarPath)
	if c.CmdlineParams != "" {
		sb.WriteString(" ")
		sb.WriteString(c.CmdlineParams)
	}
	if c.PropsFile != nil {
		sb.WriteString("; with jsserver.properties")
	} else {
		sb.WriteString("; no jsserver.properties")
	}
	return sb.String()
}

// gameoptCases builds the two standard variants for one game option: once on
// the command line as "-o oname=val", once in the properties file as
// "jsettlers.gameopt.oname=val".
func gameoptCases(shouldStartup bool, opt string, expect Expectation) []Case {
	return []Case{
		{ShouldStartup: shouldStartup, CmdlineParams: "-o " + opt, Expect: expect},
		{ShouldStartup: shouldStartup, PropsFile: []string{"jsettlers.gameopt." + opt}, Expect: expect},
	}
}

// propsCases builds the two standard variants for a list of properties: once
// as "-Dpname=val" command-line flags, once as properties-file contents.
// commonParams is used on the command line of both variants.
func propsCases(shouldStartup bool, commonParams string, props []string, expect Expectation) ([]Case, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: props list is missing or empty", ErrBadCase)
	}
	return []Case{
		{
			ShouldStartup: shouldStartup,
			CmdlineParams: strings.TrimSpace(commonParams + " -D" + strings.Join(props, " -D")),
			Expect:        expect,
		},
		{
			ShouldStartup: shouldStartup,
			CmdlineParams: commonParams,
			PropsFile:     props,
			Expect:        expect,
		},
	}, nil
}
