package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/runner"
)

func sampleReport() Report {
	return Report{
		Title: "eyeball test report",
		Result: domain.Result{
			Status: domain.StatusFail,
			Checks: []domain.Check{
				{Name: "sum", Passed: true},
				{Name: "difference", Passed: false, Message: "got 2, want 99"},
			},
			Stdout: "computing\n",
		},
		Summary: &runner.Summary{
			Total:  2,
			Passed: 1,
			Failed: 1,
			Tests: []runner.TestResult{
				{Name: "add works", Passed: true},
				{Name: "sub broken", Message: "one or more checks failed"},
			},
			Coverage: &runner.Coverage{
				Invoked: 1, Total: 2, Percent: 50,
				Modules: []runner.ModuleCoverage{
					{Path: "math.js", Invoked: 1, Total: 2, Percent: 50, Uncovered: []string{"sub"}},
				},
			},
		},
	}
}

func TestWriteMarkdown(t *testing.T) {
	var sb strings.Builder
	if err := WriteMarkdown(&sb, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"# eyeball test report",
		"**Status:** fail",
		"2 tests: 1 passed, 1 failed",
		"| add works | pass |",
		"| sub broken | FAIL | one or more checks failed |",
		"1/2 exported functions invoked (50.0%)",
		"| difference | FAIL | got 2, want 99 |",
		"computing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n---\n%s", want, out)
		}
	}
}

func TestWriteMarkdown_ErrorSection(t *testing.T) {
	var sb strings.Builder
	rep := Report{
		Title: "probe",
		Result: domain.Result{
			Status: domain.StatusError,
			Error:  &domain.ErrorInfo{Message: "boom", Location: "probe.js:2:1"},
		},
	}
	if err := WriteMarkdown(&sb, rep); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(sb.String(), "boom") || !strings.Contains(sb.String(), "probe.js:2:1") {
		t.Fatalf("error section missing:\n%s", sb.String())
	}
}

func TestWrite_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "out.md")
	if err := Write(mdPath, sampleReport()); err != nil {
		t.Fatalf("md: %v", err)
	}
	if b, err := os.ReadFile(mdPath); err != nil || len(b) == 0 {
		t.Fatalf("md file empty (err=%v)", err)
	}

	pdfPath := filepath.Join(dir, "out.pdf")
	if err := Write(pdfPath, sampleReport()); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	b, err := os.ReadFile(pdfPath)
	if err != nil || len(b) == 0 {
		t.Fatalf("pdf file empty (err=%v)", err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("not a pdf: %q", b[:8])
	}
}

func TestWrite_UnsupportedExtension(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "out.txt"), sampleReport())
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
