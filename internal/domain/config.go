package domain

// Config is the resolved project configuration. All paths are absolute
// after loading; zero values mean "not configured".
type Config struct {
	// Root is the directory the config file was found in (or the CWD).
	Root string
	// PackageDir is the directory module references resolve against.
	PackageDir string
	// TestDir holds *.test.js files for the test runner.
	TestDir string
	// FixturesPath is the module whose exports back named probe fixtures.
	FixturesPath string
}

// DefaultWallMS is the wall-clock budget applied to code execution when
// the caller does not supply one.
const DefaultWallMS = 1000

// DefaultOutputKB caps captured stdout per invocation.
const DefaultOutputKB = 64
