package modcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPutGet_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "m.js", "module.exports = {};")
	s := NewStore(dir)

	e := &Entry{
		Path:     src,
		Exports:  []ExportInfo{{Name: "add", Kind: "function", Line: 2}},
		Requires: []string{"./util"},
	}
	if err := s.Put(e); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := s.Get(src)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Exports) != 1 || got.Exports[0].Name != "add" {
		t.Fatalf("entry = %+v", got)
	}
	if got.Size == 0 || got.MTimeUnix == 0 {
		t.Fatalf("missing freshness stamp: %+v", got)
	}
}

func TestGet_MissOnChangedSource(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "m.js", "module.exports = {};")
	s := NewStore(dir)
	if err := s.Put(&Entry{Path: src}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Different size guarantees staleness even with coarse mtimes.
	writeSource(t, dir, "m.js", "module.exports = { more: true };")
	if _, ok := s.Get(src); ok {
		t.Fatal("expected miss after source change")
	}
}

func TestGet_MissOnTouchedSource(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "m.js", "module.exports = {};")
	s := NewStore(dir)
	if err := s.Put(&Entry{Path: src}); err != nil {
		t.Fatalf("put: %v", err)
	}

	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(src); ok {
		t.Fatal("expected miss after mtime change")
	}
}

func TestGet_MissWhenSourceGone(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "m.js", "module.exports = {};")
	s := NewStore(dir)
	if err := s.Put(&Entry{Path: src}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(src); ok {
		t.Fatal("expected miss for deleted source")
	}
}

func TestInvalidate(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "m.js", "module.exports = {};")
	s := NewStore(dir)
	if err := s.Put(&Entry{Path: src}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Invalidate(src); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := s.Get(src); ok {
		t.Fatal("expected miss after invalidate")
	}
	// Invalidating twice is not an error.
	if err := s.Invalidate(src); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}

func TestPut_MissingSource(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Put(&Entry{Path: "/does/not/exist.js"}); err == nil {
		t.Fatal("expected error")
	}
}
