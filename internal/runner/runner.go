// Package runner discovers and executes *.test.js files, producing a
// structured summary with optional function-level coverage.
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
	"github.com/jaymd96/eyeball/internal/probe"
)

// Options control filtering and coverage for one run.
type Options struct {
	Run      string // substring filter on test names
	File     string // glob filter on test file base names
	Coverage bool
	WallMS   int // per-test wall budget
}

// TestResult is the outcome of one registered test.
type TestResult struct {
	Name       string         `json:"name"`
	File       string         `json:"file"`
	Passed     bool           `json:"passed"`
	Checks     []domain.Check `json:"checks,omitempty"`
	Message    string         `json:"message,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// Summary is the structured payload of a runner invocation.
type Summary struct {
	Total      int          `json:"total"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Filtered   int          `json:"filtered"`
	DurationMS int64        `json:"duration_ms"`
	Tests      []TestResult `json:"tests"`
	Coverage   *Coverage    `json:"coverage,omitempty"`
}

// registered is one test(name, fn) registration inside a file.
type registered struct {
	name string
	fn   goja.Value
}

// Run executes every discovered test file. A non-nil error means the run
// itself broke (unloadable file, missing test dir); failed tests are
// reported through the summary only.
func Run(cfg domain.Config, opts Options) (Summary, error) {
	start := time.Now()
	sum := Summary{}

	files, err := discover(cfg.TestDir, opts.File)
	if err != nil {
		return sum, err
	}

	var rec *recorder
	if opts.Coverage {
		rec = newRecorder()
	}

	for _, path := range files {
		results, err := runFile(cfg, path, opts, rec)
		if err != nil {
			return sum, err
		}
		for _, r := range results {
			if r.Name == "" {
				// Filtered out before execution.
				sum.Filtered++
				continue
			}
			sum.Total++
			if r.Passed {
				sum.Passed++
			} else {
				sum.Failed++
			}
			sum.Tests = append(sum.Tests, r)
		}
	}

	if rec != nil {
		cov, err := rec.report(cfg.PackageDir, cfg.TestDir)
		if err != nil {
			return sum, err
		}
		sum.Coverage = cov
	}
	sum.DurationMS = time.Since(start).Milliseconds()
	return sum, nil
}

func discover(testDir, fileGlob string) ([]string, error) {
	if testDir == "" {
		return nil, &domain.OpError{Op: "runner.discover", Kind: domain.KindInvalidConfig,
			Err: fmt.Errorf("no test directory configured")}
	}
	if _, err := os.Stat(testDir); err != nil {
		return nil, &domain.OpError{Op: "runner.discover", Kind: domain.KindNotFound, Path: testDir, Err: err}
	}
	matches, err := filepath.Glob(filepath.Join(testDir, "*.test.js"))
	if err != nil {
		return nil, &domain.OpError{Op: "runner.discover", Kind: domain.KindInvalidConfig, Err: err}
	}
	sort.Strings(matches)
	if fileGlob == "" {
		return matches, nil
	}
	var kept []string
	for _, m := range matches {
		ok, err := filepath.Match(fileGlob, filepath.Base(m))
		if err != nil {
			return nil, &domain.OpError{Op: "runner.discover", Kind: domain.KindInvalidConfig, Err: err}
		}
		if ok {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// runFile evaluates one test file in a fresh registry and executes its
// registrations. Filtered-out tests come back with an empty Name so the
// caller can count them.
func runFile(cfg domain.Config, path string, opts Options, rec *recorder) ([]TestResult, error) {
	var regOpts []jsmod.Option
	if rec != nil {
		regOpts = append(regOpts, jsmod.WithCallHook(rec.hit))
	}
	if opts.WallMS > 0 {
		regOpts = append(regOpts, jsmod.WithWallMS(opts.WallMS))
	}
	reg := jsmod.New(cfg.PackageDir, regOpts...)
	// Relative requires in a test file resolve against its own directory,
	// so tests/foo.test.js can require("../mod").
	if err := reg.BindGlobals(filepath.Dir(path)); err != nil {
		return nil, &domain.OpError{Op: "runner.run", Kind: domain.KindExecution, Path: path, Err: err}
	}

	var sink []domain.Check
	if err := probe.BindChecks(reg.VM(), func(c domain.Check) { sink = append(sink, c) }); err != nil {
		return nil, &domain.OpError{Op: "runner.run", Kind: domain.KindExecution, Path: path, Err: err}
	}

	var tests []registered
	err := reg.VM().Set("test", func(call goja.FunctionCall) goja.Value {
		tests = append(tests, registered{
			name: call.Argument(0).String(),
			fn:   call.Argument(1),
		})
		return goja.Undefined()
	})
	if err != nil {
		return nil, &domain.OpError{Op: "runner.run", Kind: domain.KindExecution, Path: path, Err: err}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{Op: "runner.run", Kind: domain.KindNotFound, Path: path, Err: err}
	}
	// Registration phase: top-level failures abort the whole run.
	if _, err := reg.RunCode(path, string(src), opts.WallMS); err != nil {
		return nil, err
	}

	var results []TestResult
	for _, tc := range tests {
		if opts.Run != "" && !strings.Contains(tc.name, opts.Run) {
			results = append(results, TestResult{})
			continue
		}
		results = append(results, runOne(reg, path, tc, opts.WallMS, &sink))
	}
	return results, nil
}

func runOne(reg *jsmod.Registry, path string, tc registered, wallMS int, sink *[]domain.Check) TestResult {
	*sink = nil
	start := time.Now()
	_, err := reg.Invoke(tc.fn, wallMS)
	res := TestResult{
		Name:       tc.name,
		File:       path,
		Checks:     *sink,
		DurationMS: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		res.Message = err.Error()
		if loc := domain.LocationOf(err); loc != "" {
			res.Message += " (" + loc + ")"
		}
	case domain.Failed(res.Checks):
		res.Message = "one or more checks failed"
	default:
		res.Passed = true
	}
	return res
}
