package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

func writeMarkdownFile(path string, rep Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMarkdown(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteMarkdown renders the report as a Markdown document.
func WriteMarkdown(w io.Writer, rep Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	fmt.Fprintf(&b, "**Status:** %s\n\n", rep.Result.Status)

	if sum := rep.Summary; sum != nil {
		fmt.Fprintf(&b, "%s tests: %s passed, %s failed",
			humanize.Comma(int64(sum.Total)),
			humanize.Comma(int64(sum.Passed)),
			humanize.Comma(int64(sum.Failed)))
		if sum.Filtered > 0 {
			fmt.Fprintf(&b, ", %s filtered out", humanize.Comma(int64(sum.Filtered)))
		}
		fmt.Fprintf(&b, " in %dms\n\n", sum.DurationMS)

		if len(sum.Tests) > 0 {
			b.WriteString("| Test | Result | Detail |\n|---|---|---|\n")
			for _, t := range sum.Tests {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", t.Name, statusGlyph(t.Passed), t.Message)
			}
			b.WriteString("\n")
		}

		if cov := sum.Coverage; cov != nil {
			fmt.Fprintf(&b, "## Coverage\n\n%d/%d exported functions invoked (%.1f%%)\n\n",
				cov.Invoked, cov.Total, cov.Percent)
			b.WriteString("| Module | Invoked | Total | Percent |\n|---|---|---|---|\n")
			for _, mc := range cov.Modules {
				fmt.Fprintf(&b, "| %s | %d | %d | %.1f%% |\n", mc.Path, mc.Invoked, mc.Total, mc.Percent)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.Result.Checks) > 0 {
		b.WriteString("## Checks\n\n| Check | Result | Detail |\n|---|---|---|\n")
		for _, c := range rep.Result.Checks {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Name, statusGlyph(c.Passed), c.Message)
		}
		b.WriteString("\n")
	}

	if rep.Result.Error != nil {
		fmt.Fprintf(&b, "## Error\n\n%s\n", rep.Result.Error.Message)
		if rep.Result.Error.Location != "" {
			fmt.Fprintf(&b, "\nat `%s`\n", rep.Result.Error.Location)
		}
	}

	if rep.Result.Stdout != "" {
		fmt.Fprintf(&b, "## Captured output (%s)\n\n```\n%s\n```\n",
			humanize.Bytes(uint64(len(rep.Result.Stdout))), strings.TrimRight(rep.Result.Stdout, "\n"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
