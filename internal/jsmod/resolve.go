package jsmod

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jaymd96/eyeball/internal/domain"
)

// Resolve maps a module reference to an absolute file path. References
// starting with "./" or "../" resolve against baseDir (the requiring
// module's directory); everything else resolves against root. The
// candidates tried, in order: the ref as-is, ref+".js", ref/index.js.
func Resolve(root, baseDir, ref string) (string, error) {
	if ref == "" {
		return "", &domain.OpError{Op: "jsmod.resolve", Kind: domain.KindNotFound, Err: errEmptyRef}
	}

	base := root
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		base = baseDir
	}

	start := ref
	if !filepath.IsAbs(start) {
		start = filepath.Join(base, ref)
	}
	start = filepath.Clean(start)

	for _, candidate := range []string{start, start + ".js", filepath.Join(start, "index.js")} {
		fi, err := os.Stat(candidate)
		if err != nil || fi.IsDir() {
			continue
		}
		return candidate, nil
	}

	return "", &domain.OpError{
		Op:   "jsmod.resolve",
		Kind: domain.KindNotFound,
		Path: ref,
		Err:  os.ErrNotExist,
	}
}

// ParseModule reads and parses a module without evaluating it. The
// returned module has no exports object; it serves static discovery.
func ParseModule(root, ref string) (*Module, error) {
	path, err := Resolve(root, root, ref)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{Op: "jsmod.load", Kind: domain.KindNotFound, Path: path, Err: err}
	}
	prog, err := Parse(path, string(src))
	if err != nil {
		return nil, err
	}
	return &Module{Ref: ref, Path: path, Source: string(src), Program: prog}, nil
}
