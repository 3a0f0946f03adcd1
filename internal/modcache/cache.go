// Package modcache persists per-module discovery indexes under
// .eyeball/cache/modules. Entries are keyed by the module's absolute
// path and invalidated when the source file's size or mtime changes.
package modcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jaymd96/eyeball/internal/domain"
)

// ExportInfo is the cached shape of one module member.
type ExportInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature,omitempty"`
	Doc       string `json:"doc,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// Entry is the cached discovery index for one module.
type Entry struct {
	Path      string       `json:"path"`
	MTimeUnix int64        `json:"mtime_unix"`
	Size      int64        `json:"size"`
	Exports   []ExportInfo `json:"exports"`
	Requires  []string     `json:"requires,omitempty"`
}

// Store reads and writes entries inside one project's cache directory.
type Store struct {
	dir string
}

// NewStore anchors the cache under the project root.
func NewStore(root string) *Store {
	return &Store{dir: filepath.Join(root, ".eyeball", "cache", "modules")}
}

func key(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:16])
}

func (s *Store) entryPath(modulePath string) string {
	return filepath.Join(s.dir, key(modulePath)+".json")
}

// Get returns the cached entry for modulePath if it is still fresh
// against the file's current size and mtime.
func (s *Store) Get(modulePath string) (*Entry, bool) {
	data, err := os.ReadFile(s.entryPath(modulePath))
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	fi, err := os.Stat(modulePath)
	if err != nil {
		return nil, false
	}
	if fi.Size() != e.Size || fi.ModTime().Unix() != e.MTimeUnix {
		return nil, false
	}
	return &e, true
}

// Put records an entry, stamping it with the source file's current
// size and mtime, and writes it atomically.
func (s *Store) Put(e *Entry) error {
	fi, err := os.Stat(e.Path)
	if err != nil {
		return &domain.OpError{Op: "modcache.put", Kind: domain.KindNotFound, Path: e.Path, Err: err}
	}
	e.Size = fi.Size()
	e.MTimeUnix = fi.ModTime().Unix()

	data, err := json.Marshal(e)
	if err != nil {
		return &domain.OpError{Op: "modcache.put", Kind: domain.KindExecution, Path: e.Path, Err: err}
	}
	if err := writeFileAtomic(s.dir, s.entryPath(e.Path), data); err != nil {
		return &domain.OpError{Op: "modcache.put", Kind: domain.KindExecution, Path: e.Path, Err: err}
	}
	return nil
}

// Invalidate removes the cached entry for modulePath, if present.
func (s *Store) Invalidate(modulePath string) error {
	err := os.Remove(s.entryPath(modulePath))
	if err != nil && !os.IsNotExist(err) {
		return &domain.OpError{Op: "modcache.invalidate", Kind: domain.KindExecution, Path: modulePath, Err: err}
	}
	return nil
}
