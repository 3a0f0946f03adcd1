package runner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaymd96/eyeball/internal/inspect"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// ModuleCoverage is the per-module slice of a coverage report.
type ModuleCoverage struct {
	Path      string   `json:"path"`
	Invoked   int      `json:"invoked"`
	Total     int      `json:"total"`
	Percent   float64  `json:"percent"`
	Uncovered []string `json:"uncovered,omitempty"`
}

// Coverage is function-level coverage: which exported functions of the
// package were invoked at least once during the run.
type Coverage struct {
	Invoked int              `json:"invoked"`
	Total   int              `json:"total"`
	Percent float64          `json:"percent"`
	Modules []ModuleCoverage `json:"modules"`
}

// recorder aggregates call-hook hits across the per-file registries.
type recorder struct {
	hits map[string]map[string]bool // module path -> export -> seen
}

func newRecorder() *recorder {
	return &recorder{hits: make(map[string]map[string]bool)}
}

func (r *recorder) hit(modulePath, export string) {
	m, ok := r.hits[modulePath]
	if !ok {
		m = make(map[string]bool)
		r.hits[modulePath] = m
	}
	m[export] = true
}

// report walks the package statically to find every exported function,
// then joins that universe against the recorded hits.
func (r *recorder) report(packageDir, testDir string) (*Coverage, error) {
	universe := map[string][]string{} // module path -> exported function names

	err := filepath.WalkDir(packageDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != packageDir && (strings.HasPrefix(d.Name(), ".") || path == testDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".test.js") {
			return nil
		}
		src, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil
		}
		prog, perr := jsmod.Parse(path, string(src))
		if perr != nil {
			return nil
		}
		var fns []string
		for _, se := range inspect.StaticExports(prog) {
			// Classes are not instrumented, so they stay out of the
			// universe too; coverage is plain-function level.
			if se.Kind == jsmod.KindFunction {
				fns = append(fns, se.Name)
			}
		}
		if len(fns) > 0 {
			universe[path] = fns
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cov := &Coverage{}
	paths := make([]string, 0, len(universe))
	for p := range universe {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fns := universe[path]
		sort.Strings(fns)
		mc := ModuleCoverage{Path: path, Total: len(fns)}
		for _, fn := range fns {
			if r.hits[path][fn] {
				mc.Invoked++
			} else {
				mc.Uncovered = append(mc.Uncovered, fn)
			}
		}
		if mc.Total > 0 {
			mc.Percent = 100 * float64(mc.Invoked) / float64(mc.Total)
		}
		cov.Invoked += mc.Invoked
		cov.Total += mc.Total
		cov.Modules = append(cov.Modules, mc)
	}
	if cov.Total > 0 {
		cov.Percent = 100 * float64(cov.Invoked) / float64(cov.Total)
	}
	return cov, nil
}
