package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaymd96/eyeball/internal/domain"
)

func project(t *testing.T, files map[string]string) domain.Config {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return domain.Config{
		Root:       dir,
		PackageDir: dir,
		TestDir:    filepath.Join(dir, "tests"),
	}
}

const mathModule = `
module.exports = {
  add: (a, b) => a + b,
  sub: (a, b) => a - b,
};
`

func TestRun_PassAndFail(t *testing.T) {
	cfg := project(t, map[string]string{
		"math.js": mathModule,
		"tests/math.test.js": `
const math = require('../math');
test('add works', () => {
  check_eq('sum', math.add(2, 2), 4);
});
test('sub is broken on purpose', () => {
  check_eq('difference', math.sub(5, 3), 99);
});
`,
	})

	sum, err := Run(cfg, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 2 || sum.Passed != 1 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Tests[0].Name != "add works" || !sum.Tests[0].Passed {
		t.Fatalf("tests[0] = %+v", sum.Tests[0])
	}
	if sum.Tests[1].Passed || sum.Tests[1].Message != "one or more checks failed" {
		t.Fatalf("tests[1] = %+v", sum.Tests[1])
	}
}

func TestRun_ThrowingTestFailsThatTestOnly(t *testing.T) {
	cfg := project(t, map[string]string{
		"tests/a.test.js": `
test('throws', () => { throw new Error('by design not'); });
test('fine', () => { check('ok', true); });
`,
	})

	sum, err := Run(cfg, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 2 || sum.Failed != 1 || sum.Passed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if !strings.Contains(sum.Tests[0].Message, "by design not") {
		t.Fatalf("message = %q", sum.Tests[0].Message)
	}
}

func TestRun_UnloadableFileIsExecutionError(t *testing.T) {
	cfg := project(t, map[string]string{
		"tests/broken.test.js": `this is not javascript {{{`,
	})
	_, err := Run(cfg, Options{})
	if !domain.IsKind(err, domain.KindParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if loc := domain.LocationOf(err); loc == "" {
		t.Fatalf("parse failure carries no location: %v", err)
	}
	if strings.Count(err.Error(), "SyntaxError:") > 1 {
		t.Fatalf("doubled error prefix: %v", err)
	}
}

func TestRun_NameFilter(t *testing.T) {
	cfg := project(t, map[string]string{
		"tests/f.test.js": `
test('alpha case', () => { check('a', true); });
test('beta case', () => { check('b', true); });
test('alpha again', () => { check('c', true); });
`,
	})

	sum, err := Run(cfg, Options{Run: "alpha"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 2 || sum.Filtered != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRun_FileFilter(t *testing.T) {
	cfg := project(t, map[string]string{
		"tests/one.test.js": `test('one', () => { check('x', true); });`,
		"tests/two.test.js": `test('two', () => { check('y', true); });`,
	})

	sum, err := Run(cfg, Options{File: "one.*"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 1 || sum.Tests[0].Name != "one" {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRun_MissingTestDir(t *testing.T) {
	cfg := project(t, nil)
	_, err := Run(cfg, Options{})
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRun_Coverage(t *testing.T) {
	cfg := project(t, map[string]string{
		"math.js": mathModule,
		"extra.js": `
module.exports = { never: () => 0 };
`,
		"tests/math.test.js": `
const math = require('../math');
test('add only', () => { check_eq('sum', math.add(1, 1), 2); });
`,
	})

	sum, err := Run(cfg, Options{Coverage: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	cov := sum.Coverage
	if cov == nil {
		t.Fatal("expected coverage")
	}
	// Three exported functions total (add, sub, never); one invoked.
	if cov.Total != 3 || cov.Invoked != 1 {
		t.Fatalf("coverage = %+v", cov)
	}
	byBase := map[string]ModuleCoverage{}
	for _, mc := range cov.Modules {
		byBase[filepath.Base(mc.Path)] = mc
	}
	m := byBase["math.js"]
	if m.Invoked != 1 || m.Total != 2 || m.Percent != 50 {
		t.Fatalf("math coverage = %+v", m)
	}
	if len(m.Uncovered) != 1 || m.Uncovered[0] != "sub" {
		t.Fatalf("uncovered = %v", m.Uncovered)
	}
}

func TestRun_CoverageLeavesClassesConstructable(t *testing.T) {
	cfg := project(t, map[string]string{
		"shapes.js": `
class Rect {
  constructor(w, h) { this.w = w; this.h = h; }
  area() { return this.w * this.h; }
}
function unit() { return new Rect(1, 1); }
module.exports = { Rect, unit };
`,
		"tests/shapes.test.js": `
const shapes = require('../shapes');
test('construct', () => {
  const r = new shapes.Rect(2, 3);
  check_eq('area', r.area(), 6);
  check('instance', r instanceof shapes.Rect);
});
`,
	})

	sum, err := Run(cfg, Options{Coverage: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Failed != 0 || sum.Passed != 1 {
		t.Fatalf("summary = %+v", sum.Tests)
	}
	// Only the plain function counts toward the universe; the class is
	// neither instrumented nor counted.
	cov := sum.Coverage
	if cov == nil || cov.Total != 1 {
		t.Fatalf("coverage = %+v", cov)
	}
	if len(cov.Modules) != 1 || len(cov.Modules[0].Uncovered) != 1 || cov.Modules[0].Uncovered[0] != "unit" {
		t.Fatalf("modules = %+v", cov.Modules)
	}
}

func TestRun_TimeoutFailsTest(t *testing.T) {
	cfg := project(t, map[string]string{
		"tests/slow.test.js": `test('spins', () => { while (true) {} });`,
	})
	sum, err := Run(cfg, Options{WallMS: 50})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if !strings.Contains(sum.Tests[0].Message, "timeout") {
		t.Fatalf("message = %q", sum.Tests[0].Message)
	}
}
