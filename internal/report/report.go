// Package report renders probe and test results for humans, beyond the
// JSON envelope: Markdown or PDF, picked by the output file extension.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/runner"
)

// Report bundles everything a rendered document can show.
type Report struct {
	Title   string
	Result  domain.Result
	Summary *runner.Summary // set for test-runner reports
}

// Write renders the report to path. ".md" and ".markdown" produce
// Markdown; ".pdf" produces a PDF.
func Write(path string, rep Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return writeMarkdownFile(path, rep)
	case ".pdf":
		return writePDF(path, rep)
	default:
		return &domain.OpError{
			Op:   "report.write",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("unsupported report format %q", filepath.Ext(path)),
		}
	}
}

// statusGlyph is the short marker used in tables.
func statusGlyph(passed bool) string {
	if passed {
		return "pass"
	}
	return "FAIL"
}
