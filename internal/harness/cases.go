package harness

import "fmt"

// Suite returns the full ordered list of startup-parameter test cases.
//
// The order is deliberate and must not change: several cases rely on the
// properties file written or deleted by the case before them, and every case
// assumes the previous server instance has released the default port.
func Suite() ([]Case, error) {
	var cases []Case
	add := func(cs ...Case) { cases = append(cases, cs...) }
	addProps := func(shouldStartup bool, commonParams string, props []string, expect Expectation) error {
		cs, err := propsCases(shouldStartup, commonParams, props, expect)
		if err != nil {
			return err
		}
		add(cs...)
		return nil
	}

	// no problems, no game opts on cmdline, no props file
	add(Case{ShouldStartup: true})

	// same game option twice on cmdline; different uppercase/lowercase
	add(
		Case{CmdlineParams: "-o NT=t -o NT=y", Expect: Contains("option cannot appear twice on command line: NT")},
		Case{CmdlineParams: "-o NT=t -o nt=f", Expect: Contains("option cannot appear twice on command line: NT")},
		Case{CmdlineParams: "-Djsettlers.gameopt.NT=t -Djsettlers.gameopt.nt=f", Expect: Contains("option cannot appear twice on command line: NT")},
		Case{CmdlineParams: "-o NT=t -Djsettlers.gameopt.nt=f", Expect: Contains("option cannot appear twice on command line: NT")},
	)

	// missing value
	add(Case{CmdlineParams: "-o", Expect: Contains("Missing required option name/value after -o")})

	// props file with no gameopts
	add(Case{ShouldStartup: true, PropsFile: []string{"jsettlers.allow.debug=y"}})

	// props file with gameopts with no problems
	add(Case{ShouldStartup: true, PropsFile: []string{"jsettlers.gameopt.NT=y", "jsettlers.gameopt.vp=t12"}})

	// if multiple problems, make sure startup reports them all
	add(
		Case{CmdlineParams: "-oXYZ=t -oZZZ=t",
			Expect: Contains("Unknown game option: XYZ\nUnknown game option: ZZZ")},
		Case{PropsFile: []string{"jsettlers.gameopt.XYZ=t", "jsettlers.gameopt.ZZZ=t"},
			Expect: HasLines("Unknown game option: XYZ", "Unknown game option: ZZZ")},
		Case{PropsFile: []string{"jsettlers.gameopt.VP=NaN", "jsettlers.gameopt.BC=zzz"},
			Expect: HasLines("Unknown or malformed game option: VP=NaN", "Unknown or malformed game option: BC=zzz")},
	)

	// empty game option name after prefix
	add(
		Case{CmdlineParams: "-Djsettlers.gameopt.=n",
			Expect: Contains("Empty game option name in property key: jsettlers.gameopt.")},
		Case{PropsFile: []string{"jsettlers.gameopt.=n"},
			Expect: Contains("Empty game option name in property key: jsettlers.gameopt.")},
	)

	// unknown opt name
	add(gameoptCases(false, "un_known=y", Contains("Unknown game option: UN_KNOWN"))...)

	// "unknown or malformed" opt (or bad value)
	add(
		Case{CmdlineParams: "-o RD=g", Expect: Contains("Unknown or malformed game option: RD")},
		Case{CmdlineParams: "-o RD=yy", Expect: Contains("Unknown or malformed game option: RD")},
	)
	add(gameoptCases(false, "n7=z", Contains("Unknown or malformed game option: N7"))...)
	add(gameoptCases(false, "vp=z15", Contains("Unknown or malformed game option: VP"))...)
	add(gameoptCases(false, "OPTNAME_TOO_LONG=t", Contains("Key length > 8: OPTNAME_TOO_LONG"))...)

	// missing value for property
	add(Case{CmdlineParams: "-Djsettlers.xyz", Expect: Contains("Missing value for property jsettlers.xyz")})

	// int property jsettlers.bots.fast_pause_percent
	add(
		Case{CmdlineParams: "-Djsettlers.bots.fast_pause_percent=-2",
			Expect: Contains("Error: Property out of range (0 to 100): jsettlers.bots.fast_pause_percent")},
		Case{CmdlineParams: "-Djsettlers.bots.fast_pause_percent=101",
			Expect: Contains("Error: Property out of range (0 to 100): jsettlers.bots.fast_pause_percent")},
		Case{ShouldStartup: true, CmdlineParams: "-Djsettlers.bots.fast_pause_percent=3"},
	)

	// unknown scenario name
	add(gameoptCases(false, "SC=ZZZ", Contains("default scenario ZZZ is unknown"))...)
	add(gameoptCases(false, "sc=ZZZ", Contains("default scenario ZZZ is unknown"))...) // non-uppercase opt name
	add(Case{CmdlineParams: "-Djsettlers.gameopt.sc=ZZZ",
		Expect: Contains("Command line default scenario ZZZ is unknown")})

	// Config Validation Mode (--test-config):
	// - should pass using default settings
	noProblemsFound := Contains("Config Validation Mode: No problems found.")
	add(
		Case{CmdlineParams: "--test-config", Expect: noProblemsFound},
		Case{CmdlineParams: "-t", Expect: noProblemsFound},
		Case{PropsFile: []string{"jsettlers.test.validate_config=Y"}, Expect: noProblemsFound},
	)
	// - check number of bot users vs maxConnections, reserve room for humans
	if err := addProps(false, "--test-config",
		[]string{"jsettlers.connections=20", "jsettlers.startrobots=10"},
		noProblemsFound); err != nil {
		return nil, err
	}
	if err := addProps(false, "--test-config",
		[]string{"jsettlers.connections=20", "jsettlers.startrobots=11"},
		Contains("jsettlers.connections: Only 9 player connections would be available because of the 11 started robots. Should use 22 for max")); err != nil {
		return nil, err
	}
	if err := addProps(false, "--test-config",
		[]string{"jsettlers.connections=10", "jsettlers.startrobots=4"},
		noProblemsFound); err != nil {
		return nil, err
	}
	if err := addProps(false, "--test-config",
		[]string{"jsettlers.connections=9", "jsettlers.startrobots=4"},
		Contains("jsettlers.connections: Only 5 player connections would be available because of the 4 started robots. Should use 10 for max")); err != nil {
		return nil, err
	}

	for i, c := range cases {
		if err := c.Validate(); err != nil {
			return nil, &SuiteError{Index: i, Err: err}
		}
	}
	return cases, nil
}

// SuiteError reports which declared case was unusable.
type SuiteError struct {
	Index int
	Err   error
}

func (e *SuiteError) Error() string {
	return fmt.Sprintf("suite case %d: %v", e.Index+1, e.Err)
}

func (e *SuiteError) Unwrap() error { return e.Err }
