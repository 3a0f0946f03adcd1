// Package config locates and loads the project configuration file
// (eyeball.yml). A missing file is not an error; every setting has a
// working default so the tool runs in any directory.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jaymd96/eyeball/internal/domain"
)

// FileName is the project configuration file looked up from the CWD.
const FileName = "eyeball.yml"

// Find walks up from startDir looking for the config file. It returns
// the empty string when no config file exists anywhere above startDir.
func Find(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads the config at path. An empty path yields the defaults for
// startDir. Relative paths inside the file resolve against the config
// file's directory.
func Load(path, startDir string) (domain.Config, error) {
	root, err := filepath.Abs(startDir)
	if err != nil {
		return domain.Config{}, &domain.OpError{Op: "config.load", Kind: domain.KindInvalidConfig, Err: err}
	}

	var dto YAMLConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return domain.Config{}, &domain.OpError{Op: "config.load", Kind: domain.KindNotFound, Path: path, Err: err}
		}
		if err := yaml.Unmarshal(b, &dto); err != nil {
			return domain.Config{}, &domain.OpError{Op: "config.load", Kind: domain.KindInvalidConfig, Path: path, Err: err}
		}
		root = filepath.Dir(path)
	}

	return mapConfig(root, dto)
}

// Resolve is the usual entry point: honor an explicit --config path,
// otherwise search upward from startDir.
func Resolve(explicit, startDir string) (domain.Config, error) {
	if explicit != "" {
		return Load(explicit, startDir)
	}
	return Load(Find(startDir), startDir)
}

func mapConfig(root string, dto YAMLConfig) (domain.Config, error) {
	cfg := domain.Config{Root: root}

	cfg.PackageDir = resolvePath(root, dto.Package, root)
	cfg.TestDir = resolvePath(root, dto.TestDir, filepath.Join(root, "tests"))
	if dto.Fixtures != "" {
		cfg.FixturesPath = resolvePath(root, dto.Fixtures, "")
	}

	if fi, err := os.Stat(cfg.PackageDir); err != nil || !fi.IsDir() {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: cfg.PackageDir,
			Err:  errors.New("package directory does not exist"),
		}
	}
	return cfg, nil
}

func resolvePath(root, value, fallback string) string {
	if value == "" {
		return fallback
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}
