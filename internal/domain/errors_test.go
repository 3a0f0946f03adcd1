package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpError_Message(t *testing.T) {
	err := &OpError{
		Op:   "jsmod.load",
		Kind: KindNotFound,
		Path: "lib/util.js",
		Err:  errors.New("no such file"),
	}
	want := "jsmod.load: not_found (path=lib/util.js): no such file"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	inner := &OpError{Op: "probe.run", Kind: KindTimeout}
	err := fmt.Errorf("running probe: %w", inner)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected timeout kind through wrapping")
	}
	if IsKind(err, KindParse) {
		t.Fatalf("unexpected parse kind")
	}
}

func TestLocationOf(t *testing.T) {
	err := &OpError{Op: "probe.run", Kind: KindExecution, Location: "probe.js:3:10"}
	if got := LocationOf(fmt.Errorf("wrap: %w", err)); got != "probe.js:3:10" {
		t.Fatalf("got %q", got)
	}
	if got := LocationOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty location, got %q", got)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"check sentinel", ErrCheckFailed, 1},
		{"check kind", &OpError{Op: "test.run", Kind: KindCheckFailed}, 1},
		{"wrapped check", fmt.Errorf("3 failed: %w", ErrCheckFailed), 1},
		{"execution", &OpError{Op: "exec", Kind: KindExecution}, 2},
		{"plain", errors.New("boom"), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFromChecks_Status(t *testing.T) {
	pass := []Check{{Name: "a", Passed: true}}
	mixed := []Check{{Name: "a", Passed: true}, {Name: "b", Passed: false}}

	if r := FromChecks(pass, "", nil); r.Status != StatusOK {
		t.Fatalf("expected ok, got %s", r.Status)
	}
	if r := FromChecks(mixed, "", nil); r.Status != StatusFail {
		t.Fatalf("expected fail, got %s", r.Status)
	}
}
