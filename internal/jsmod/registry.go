package jsmod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/sandbox"
)

// CallHook observes invocations of instrumented exported functions.
// It receives the module path and the export name.
type CallHook func(modulePath, export string)

// Registry owns one goja runtime and the cache of modules loaded into it.
// It is not safe for concurrent use; each command (and each test file in
// the runner) builds its own registry.
type Registry struct {
	vm     *goja.Runtime
	root   string
	out    *sandbox.BoundedBuffer
	cache  map[string]*Module
	wallMS int
	onCall CallHook
}

// Option configures a Registry.
type Option func(*Registry)

// WithOutputCap overrides the captured-stdout cap in KiB.
func WithOutputCap(kb int) Option {
	return func(r *Registry) { r.out = sandbox.NewBoundedBuffer(kb) }
}

// WithWallMS overrides the wall-clock budget for module evaluation.
func WithWallMS(ms int) Option {
	return func(r *Registry) { r.wallMS = ms }
}

// WithCallHook instruments every exported function so hook fires on each
// invocation. Used by the test runner's coverage option.
func WithCallHook(hook CallHook) Option {
	return func(r *Registry) { r.onCall = hook }
}

// New builds a registry rooted at the given package directory.
func New(root string, opts ...Option) *Registry {
	r := &Registry{
		vm:     goja.New(),
		root:   root,
		out:    sandbox.NewBoundedBuffer(domain.DefaultOutputKB),
		cache:  make(map[string]*Module),
		wallMS: domain.DefaultWallMS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// VM exposes the underlying runtime for callers that bind extra globals.
func (r *Registry) VM() *goja.Runtime { return r.vm }

// Root returns the package directory modules resolve against.
func (r *Registry) Root() string { return r.root }

// Stdout returns everything scripts wrote through console bindings.
func (r *Registry) Stdout() string { return r.out.String() }

// StdoutTruncated reports whether the output cap was hit.
func (r *Registry) StdoutTruncated() bool { return r.out.Truncated() }

// ResetStdout clears captured output between executions.
func (r *Registry) ResetStdout() { r.out.Reset() }

// Load resolves ref against the package root and evaluates the module,
// returning the cached instance on repeat loads.
func (r *Registry) Load(ref string) (*Module, error) {
	return r.load(ref, r.root)
}

// Reload drops the cached module for ref and evaluates it again.
func (r *Registry) Reload(ref string) (*Module, error) {
	path, err := Resolve(r.root, r.root, ref)
	if err != nil {
		return nil, err
	}
	delete(r.cache, path)
	return r.load(ref, r.root)
}

func (r *Registry) load(ref, baseDir string) (*Module, error) {
	path, err := Resolve(r.root, baseDir, ref)
	if err != nil {
		return nil, err
	}
	if m, ok := r.cache[path]; ok {
		return m, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{Op: "jsmod.load", Kind: domain.KindNotFound, Path: path, Err: err}
	}

	prog, err := Parse(path, string(src))
	if err != nil {
		return nil, err
	}

	m := &Module{
		Ref:     ref,
		Path:    path,
		Source:  string(src),
		Program: prog,
		exports: r.vm.NewObject(),
	}

	// Registered before evaluation so require cycles observe the partial
	// exports object instead of recursing forever.
	r.cache[path] = m
	if err := r.evaluate(m); err != nil {
		delete(r.cache, path)
		return nil, err
	}
	if r.onCall != nil {
		r.instrument(m)
	}
	return m, nil
}

// evaluate runs the module body inside a CommonJS-style wrapper. The
// wrapper prefix shares the first source line so reported error
// locations keep the module's own line numbers.
func (r *Registry) evaluate(m *Module) error {
	wrapped := "(function(module, exports, require, console) { " + m.Source + "\n})"
	stop := sandbox.GuardWall(r.vm, r.wallMS)
	v, err := r.vm.RunScript(m.Path, wrapped)
	if err != nil {
		stop()
		return r.classify("jsmod.evaluate", m.Path, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		stop()
		return &domain.OpError{Op: "jsmod.evaluate", Kind: domain.KindExecution, Path: m.Path,
			Err: fmt.Errorf("module wrapper did not compile to a function")}
	}

	moduleObj := r.vm.NewObject()
	_ = moduleObj.Set("exports", m.exports)

	_, err = fn(goja.Undefined(), moduleObj, r.vm.ToValue(m.exports), r.requireFor(m.Path), r.consoleObject())
	stop()
	if err != nil {
		return r.classify("jsmod.evaluate", m.Path, err)
	}

	// The body may have reassigned module.exports wholesale.
	if ex := moduleObj.Get("exports"); ex != nil && !goja.IsUndefined(ex) && !goja.IsNull(ex) {
		m.exports = ex.ToObject(r.vm)
	}
	return nil
}

// requireFor returns the require binding for a module at fromPath.
func (r *Registry) requireFor(fromPath string) goja.Value {
	baseDir := filepath.Dir(fromPath)
	return r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		ref := call.Argument(0).String()
		dep, err := r.load(ref, baseDir)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return r.vm.ToValue(dep.exports)
	})
}

// BindGlobals installs require and console as globals for snippets that
// run outside the module wrapper (exec, probes, test files). Relative
// refs resolve against baseDir; an empty baseDir means the package root,
// for snippets with no file of their own.
func (r *Registry) BindGlobals(baseDir string) error {
	if baseDir == "" {
		baseDir = r.root
	}
	if err := r.vm.Set("require", r.requireFor(filepath.Join(baseDir, "_"))); err != nil {
		return err
	}
	return r.vm.Set("console", r.consoleObject())
}

func (r *Registry) consoleObject() *goja.Object {
	c := r.vm.NewObject()
	write := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			parts = append(parts, a.String())
		}
		if _, err := r.out.WriteString(strings.Join(parts, " ") + "\n"); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return goja.Undefined()
	}
	for _, name := range []string{"log", "info", "warn", "error"} {
		_ = c.Set(name, write)
	}
	return c
}

// RunCode compiles and executes an arbitrary snippet under the wall
// budget, returning its completion value.
func (r *Registry) RunCode(name, src string, wallMS int) (goja.Value, error) {
	if wallMS <= 0 {
		wallMS = r.wallMS
	}
	stop := sandbox.GuardWall(r.vm, wallMS)
	defer stop()
	v, err := r.vm.RunScript(name, src)
	if err != nil {
		return nil, r.classify("jsmod.run", name, err)
	}
	return v, nil
}

// Call invokes an exported function (or constructs via an exported
// class/constructor when asCtor is set) with the supplied arguments.
func (r *Registry) Call(m *Module, name string, args []goja.Value, wallMS int, asCtor bool) (goja.Value, error) {
	v := m.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return nil, &domain.OpError{Op: "jsmod.call", Kind: domain.KindNotFound, Path: m.Path,
			Err: fmt.Errorf("no export %q in %s", name, m.Ref)}
	}
	if wallMS <= 0 {
		wallMS = r.wallMS
	}

	if asCtor {
		stop := sandbox.GuardWall(r.vm, wallMS)
		defer stop()
		obj, err := r.vm.New(v, args...)
		if err != nil {
			return nil, r.classify("jsmod.call", m.Path, err)
		}
		return obj, nil
	}

	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, &domain.OpError{Op: "jsmod.call", Kind: domain.KindExecution, Path: m.Path,
			Err: fmt.Errorf("export %q is not callable (kind %s)", name, ClassifyValue(v))}
	}
	stop := sandbox.GuardWall(r.vm, wallMS)
	defer stop()
	out, err := fn(goja.Undefined(), args...)
	if err != nil {
		return nil, r.classify("jsmod.call", m.Path, err)
	}
	return out, nil
}

// Invoke calls an arbitrary callable value under the wall budget.
func (r *Registry) Invoke(fn goja.Value, wallMS int, args ...goja.Value) (goja.Value, error) {
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, &domain.OpError{Op: "jsmod.invoke", Kind: domain.KindExecution,
			Err: fmt.Errorf("value is not callable")}
	}
	if wallMS <= 0 {
		wallMS = r.wallMS
	}
	stop := sandbox.GuardWall(r.vm, wallMS)
	defer stop()
	out, err := callable(goja.Undefined(), args...)
	if err != nil {
		return nil, r.classify("jsmod.invoke", "", err)
	}
	return out, nil
}

// instrument replaces function exports with counting shims feeding the
// call hook. The original behavior, this-binding included, is preserved.
// Class exports stay untouched: a native shim is not constructable, so
// wrapping one would break `new` and prototype access.
func (r *Registry) instrument(m *Module) {
	if m.exports == nil {
		return
	}
	for _, name := range m.exports.Keys() {
		v := m.exports.Get(name)
		fn, ok := goja.AssertFunction(v)
		if !ok || ClassifyValue(v) == KindClass {
			continue
		}
		path, export := m.Path, name
		shim := func(call goja.FunctionCall) goja.Value {
			r.onCall(path, export)
			out, err := fn(call.This, call.Arguments...)
			if err != nil {
				if ex, isEx := err.(*goja.Exception); isEx {
					panic(r.vm.ToValue(ex.Value()))
				}
				panic(r.vm.NewGoError(err))
			}
			return out
		}
		_ = m.exports.Set(name, shim)
	}
}
