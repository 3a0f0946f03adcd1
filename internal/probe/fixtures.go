package probe

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// bindFixtures loads the configured fixtures module and binds each
// requested fixture as a global. Exports that are zero-arg functions act
// as factories and are invoked once per probe.
func bindFixtures(reg *jsmod.Registry, cfg domain.Config, names []string) error {
	if cfg.FixturesPath == "" {
		return &domain.OpError{Op: "probe.fixtures", Kind: domain.KindInvalidConfig,
			Err: fmt.Errorf("fixtures requested but no fixtures module configured")}
	}
	m, err := reg.Load(cfg.FixturesPath)
	if err != nil {
		return err
	}

	for _, name := range names {
		v := m.Get(name)
		if v == nil || goja.IsUndefined(v) {
			return &domain.OpError{Op: "probe.fixtures", Kind: domain.KindNotFound, Path: m.Path,
				Err: fmt.Errorf("unknown fixture %q", name)}
		}
		if factory, ok := goja.AssertFunction(v); ok {
			made, err := factory(goja.Undefined())
			if err != nil {
				return &domain.OpError{Op: "probe.fixtures", Kind: domain.KindExecution, Path: m.Path,
					Err: fmt.Errorf("fixture %q factory: %w", name, err)}
			}
			v = made
		}
		if err := reg.VM().Set(name, v); err != nil {
			return &domain.OpError{Op: "probe.fixtures", Kind: domain.KindExecution, Err: err}
		}
	}
	return nil
}

// evalPathCheck applies one JSONPath assertion against the probe body's
// completion value.
func evalPathCheck(value any, pc PathCheck) domain.Check {
	name := "path:" + pc.Expr
	got, err := jsonpath.Get(pc.Expr, value)
	if err != nil {
		return domain.Check{Name: name, Passed: false,
			Message: fmt.Sprintf("jsonpath %q: %v", pc.Expr, err)}
	}
	want := parseWant(pc.Want)
	if renderJSON(got) != renderJSON(want) {
		return domain.Check{Name: name, Passed: false,
			Message: fmt.Sprintf("got %s, want %s", renderJSON(got), renderJSON(want))}
	}
	return domain.Check{Name: name, Passed: true}
}
