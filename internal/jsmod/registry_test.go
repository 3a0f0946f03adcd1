package jsmod

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
)

func writeModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExportsAndKinds(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "math.js", `
function add(a, b) { return a + b; }
class Counter {
  constructor() { this.n = 0; }
  bump() { this.n++; return this.n; }
}
module.exports = { add, Counter, PI: 3.14, name: "math", flags: [1, 2], ok: true };
`)

	r := New(dir)
	m, err := r.Load("math")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := map[string]string{
		"add":     KindFunction,
		"Counter": KindClass,
		"PI":      KindNumber,
		"name":    KindString,
		"flags":   KindArray,
		"ok":      KindBoolean,
	}
	for name, kind := range want {
		if got := ClassifyValue(m.Get(name)); got != kind {
			t.Errorf("%s: got kind %s, want %s", name, got, kind)
		}
	}
	names := m.ExportNames()
	if len(names) != len(want) {
		t.Fatalf("got %d exports, want %d: %v", len(names), len(want), names)
	}
}

func TestLoad_RequireChainAndCache(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "lib/util.js", `
let loads = (globalThis.__loads = (globalThis.__loads || 0) + 1);
module.exports = { double: (x) => x * 2, loads };
`)
	writeModule(t, dir, "main.js", `
const util = require('./lib/util');
const again = require('./lib/util');
module.exports = { quad: (x) => util.double(again.double(x)) };
`)

	r := New(dir)
	m, err := r.Load("main")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := r.Call(m, "quad", []goja.Value{r.VM().ToValue(3)}, 0, false)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.ToInteger() != 12 {
		t.Fatalf("quad(3) = %v, want 12", out)
	}

	// Same file required twice must evaluate once.
	util, _ := r.Load("lib/util")
	if got := util.Get("loads").ToInteger(); got != 1 {
		t.Fatalf("module evaluated %d times, want 1", got)
	}
}

func TestLoad_CycleYieldsPartialExports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.js", `
exports.name = 'a';
const b = require('./b');
exports.sawB = b.name;
`)
	writeModule(t, dir, "b.js", `
const a = require('./a');
exports.name = 'b';
exports.sawA = a.name;
`)

	r := New(dir)
	a, err := r.Load("a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := a.Get("sawB").String(); got != "b" {
		t.Fatalf("a.sawB = %q, want b", got)
	}
	b, _ := r.Load("b")
	// b loaded mid-cycle and observed a's partial exports.
	if got := b.Get("sawA").String(); got != "a" {
		t.Fatalf("b.sawA = %q, want a", got)
	}
}

func TestLoad_MissingModule(t *testing.T) {
	r := New(t.TempDir())
	_, err := r.Load("nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLoad_ParseErrorHasLocation(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "bad.js", "function (broken {\n")
	r := New(dir)
	_, err := r.Load("bad")
	if !domain.IsKind(err, domain.KindParse) {
		t.Fatalf("expected parse kind, got %v", err)
	}
	if loc := domain.LocationOf(err); !strings.Contains(loc, "bad.js:") {
		t.Fatalf("expected location in bad.js, got %q", loc)
	}
}

func TestLoad_ThrowDuringEvaluate(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "boom.js", `throw new Error('kaput');`)
	r := New(dir)
	_, err := r.Load("boom")
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "kaput") {
		t.Fatalf("message lost: %v", err)
	}
}

func TestLoad_ThrowLocationKeepsSourceLines(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "boom.js", `var ok = 1;
throw new Error('kaput');
`)
	r := New(dir)
	_, err := r.Load("boom")
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution kind, got %v", err)
	}
	// The throw sits on line 2 of the module and must be reported there,
	// unshifted by the evaluation wrapper.
	if loc := domain.LocationOf(err); !strings.Contains(loc, "boom.js:2:") {
		t.Fatalf("location = %q, want boom.js:2", loc)
	}
}

func TestRunCode_SyntaxErrorClassifiesAsParse(t *testing.T) {
	r := New(t.TempDir())
	_, err := r.RunCode("bad.js", "this is not javascript {{{", 0)
	if !domain.IsKind(err, domain.KindParse) {
		t.Fatalf("expected parse kind, got %v", err)
	}
	if strings.Count(err.Error(), "SyntaxError:") > 1 {
		t.Fatalf("doubled error prefix: %v", err)
	}
	if loc := domain.LocationOf(err); loc == "" {
		t.Fatalf("no location on syntax error: %v", err)
	}
}

func TestRunCode_TimeoutInterrupts(t *testing.T) {
	r := New(t.TempDir())
	_, err := r.RunCode("spin.js", "while (true) {}", 50)
	if !domain.IsKind(err, domain.KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestConsole_CapturedAndBounded(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "noisy.js", `
console.log('hello', 42);
console.error('oops');
module.exports = {};
`)
	r := New(dir)
	if _, err := r.Load("noisy"); err != nil {
		t.Fatalf("load: %v", err)
	}
	out := r.Stdout()
	if out != "hello 42\noops\n" {
		t.Fatalf("stdout = %q", out)
	}

	r2 := New(dir, WithOutputCap(1))
	writeModule(t, dir, "flood.js", `
for (let i = 0; i < 10000; i++) console.log('xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx');
`)
	if _, err := r2.Load("flood"); err == nil {
		t.Fatal("expected output-limit failure")
	}
	if !r2.StdoutTruncated() {
		t.Fatal("expected truncated stdout")
	}
}

func TestCall_NotCallable(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "vals.js", `module.exports = { n: 7 };`)
	r := New(dir)
	m, _ := r.Load("vals")

	if _, err := r.Call(m, "n", nil, 0, false); !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution kind, got %v", err)
	}
	if _, err := r.Call(m, "ghost", nil, 0, false); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCall_Constructor(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "counter.js", `
class Counter {
  constructor(start) { this.n = start; }
}
module.exports = { Counter };
`)
	r := New(dir)
	m, _ := r.Load("counter")
	out, err := r.Call(m, "Counter", []goja.Value{r.VM().ToValue(5)}, 0, true)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	obj := out.ToObject(r.VM())
	if got := obj.Get("n").ToInteger(); got != 5 {
		t.Fatalf("n = %d, want 5", got)
	}
}

func TestReload_PicksUpChange(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "v.js", `module.exports = { v: 1 };`)
	r := New(dir)
	m, _ := r.Load("v")
	if m.Get("v").ToInteger() != 1 {
		t.Fatal("initial load wrong")
	}

	writeModule(t, dir, "v.js", `module.exports = { v: 2 };`)
	m2, err := r.Reload("v")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := m2.Get("v").ToInteger(); got != 2 {
		t.Fatalf("after reload v = %d, want 2", got)
	}
}

func TestBindGlobals_RequireResolvesAgainstBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mod.js", `module.exports = { n: 7 };`)
	writeModule(t, dir, "tests/helper.js", `module.exports = { k: 2 };`)

	r := New(dir)
	if err := r.BindGlobals(filepath.Join(dir, "tests")); err != nil {
		t.Fatalf("bind: %v", err)
	}
	out, err := r.RunCode("snippet", `require('../mod').n * require('./helper').k`, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.ToInteger() != 14 {
		t.Fatalf("got %v, want 14", out)
	}
}

func TestBindGlobals_DefaultBaseDirIsRoot(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mod.js", `module.exports = { n: 3 };`)

	r := New(dir)
	if err := r.BindGlobals(""); err != nil {
		t.Fatalf("bind: %v", err)
	}
	out, err := r.RunCode("snippet", `require('./mod').n`, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.ToInteger() != 3 {
		t.Fatalf("got %v, want 3", out)
	}
}

func TestCallHook_CountsInvocations(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "m.js", `
module.exports = {
  used: (x) => x + 1,
  unused: (x) => x - 1,
};
`)
	calls := map[string]int{}
	r := New(dir, WithCallHook(func(_, export string) { calls[export]++ }))
	m, err := r.Load("m")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := r.Call(m, "used", []goja.Value{r.VM().ToValue(1)}, 0, false); err != nil {
		t.Fatalf("call: %v", err)
	}
	if calls["used"] != 1 || calls["unused"] != 0 {
		t.Fatalf("unexpected counts: %v", calls)
	}
}
