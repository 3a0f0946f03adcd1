// Package probe runs short verification snippets against loaded modules:
// optional setup code, named fixtures, temporary attribute patches, and a
// check API producing named pass/fail outcomes.
package probe

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// Patch temporarily replaces one export of a module for the duration of
// a probe. Expr is a JavaScript expression for the replacement value.
type Patch struct {
	Module string
	Name   string
	Expr   string
}

// PathCheck asserts a JSONPath over the probe body's completion value.
type PathCheck struct {
	Expr string
	Want string // JSON literal; bare strings accepted
}

// Spec describes one probe invocation.
type Spec struct {
	Body       string
	Setup      string
	Fixtures   []string
	Patches    []Patch
	PathChecks []PathCheck
	WallMS     int
}

// Outcome carries everything a probe produced, independent of verdict.
type Outcome struct {
	Checks []domain.Check
	Stdout string
	Value  any // completion value of the body, JSON-normalized
}

// Run executes the probe. A non-nil error means the probe itself could
// not be carried out; failed checks are reported through Outcome, not
// the error.
func Run(reg *jsmod.Registry, cfg domain.Config, spec Spec) (Outcome, error) {
	out := Outcome{}
	if spec.Body == "" {
		return out, &domain.OpError{Op: "probe.run", Kind: domain.KindInvalidConfig,
			Err: fmt.Errorf("probe body is empty")}
	}

	if err := reg.BindGlobals(""); err != nil {
		return out, &domain.OpError{Op: "probe.run", Kind: domain.KindExecution, Err: err}
	}
	record := func(c domain.Check) { out.Checks = append(out.Checks, c) }
	if err := BindChecks(reg.VM(), record); err != nil {
		return out, &domain.OpError{Op: "probe.run", Kind: domain.KindExecution, Err: err}
	}

	finish := func(err error) (Outcome, error) {
		out.Stdout = reg.Stdout()
		return out, err
	}

	if len(spec.Fixtures) > 0 {
		if err := bindFixtures(reg, cfg, spec.Fixtures); err != nil {
			return finish(err)
		}
	}

	restore, err := applyPatches(reg, spec.Patches, spec.WallMS)
	if err != nil {
		return finish(err)
	}
	defer restore()

	if spec.Setup != "" {
		if _, err := reg.RunCode("setup.js", spec.Setup, spec.WallMS); err != nil {
			return finish(err)
		}
	}

	v, err := reg.RunCode("probe.js", spec.Body, spec.WallMS)
	if err != nil {
		return finish(err)
	}
	if v != nil && !goja.IsUndefined(v) {
		out.Value = normalize(v.Export())
	}

	for _, pc := range spec.PathChecks {
		out.Checks = append(out.Checks, evalPathCheck(out.Value, pc))
	}
	return finish(nil)
}

// BindChecks installs check(name, cond) and check_eq(name, got, want) as
// globals, recording every outcome through the supplied callback. The
// test runner shares these bindings.
func BindChecks(vm *goja.Runtime, record func(domain.Check)) error {
	if err := vm.Set("check", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		cond := call.Argument(1).ToBoolean()
		c := domain.Check{Name: name, Passed: cond}
		if !cond {
			c.Message = "condition did not hold"
		}
		record(c)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	return vm.Set("check_eq", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		got := call.Argument(1)
		want := call.Argument(2)
		equal := got.StrictEquals(want) ||
			reflect.DeepEqual(normalize(got.Export()), normalize(want.Export()))
		c := domain.Check{Name: name, Passed: equal}
		if !equal {
			c.Message = fmt.Sprintf("got %s, want %s", renderJSON(got.Export()), renderJSON(want.Export()))
		}
		record(c)
		return goja.Undefined()
	})
}

// applyPatches swaps in replacement exports and returns a restore
// function; restoration runs in reverse order and survives a throwing
// probe body via the caller's defer.
func applyPatches(reg *jsmod.Registry, patches []Patch, wallMS int) (func(), error) {
	type saved struct {
		exports *goja.Object
		name    string
		orig    goja.Value
	}
	var applied []saved
	restore := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			s := applied[i]
			_ = s.exports.Set(s.name, s.orig)
		}
	}

	for _, p := range patches {
		m, err := reg.Load(p.Module)
		if err != nil {
			restore()
			return func() {}, err
		}
		orig := m.Exports().Get(p.Name)
		if orig == nil || goja.IsUndefined(orig) {
			restore()
			return func() {}, &domain.OpError{Op: "probe.patch", Kind: domain.KindNotFound, Path: m.Path,
				Err: fmt.Errorf("no export %q to patch in %s", p.Name, p.Module)}
		}
		val, err := reg.RunCode("patch.js", "("+p.Expr+")", wallMS)
		if err != nil {
			restore()
			return func() {}, err
		}
		if err := m.Exports().Set(p.Name, val); err != nil {
			restore()
			return func() {}, &domain.OpError{Op: "probe.patch", Kind: domain.KindExecution, Path: m.Path, Err: err}
		}
		applied = append(applied, saved{exports: m.Exports(), name: p.Name, orig: orig})
	}
	return restore, nil
}

// parseWant reads a JSON literal, falling back to the raw string so
// callers can write --expect-path '$.name=alice' without quoting.
func parseWant(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func normalize(x any) any {
	b, err := json.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%v", x)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return string(b)
	}
	return out
}

func renderJSON(x any) string {
	b, err := json.Marshal(normalize(x))
	if err != nil {
		return fmt.Sprintf("%v", x)
	}
	return string(b)
}
