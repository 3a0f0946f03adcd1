package report

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

func writePDF(path string, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(rep.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, rep.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Status: "+rep.Result.Status, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if sum := rep.Summary; sum != nil {
		line := fmt.Sprintf("%d tests: %d passed, %d failed", sum.Total, sum.Passed, sum.Failed)
		if sum.Filtered > 0 {
			line += fmt.Sprintf(", %d filtered out", sum.Filtered)
		}
		line += fmt.Sprintf(" in %dms", sum.DurationMS)
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
		pdf.Ln(2)

		for _, t := range sum.Tests {
			row := fmt.Sprintf("[%s] %s", statusGlyph(t.Passed), t.Name)
			if t.Message != "" {
				row += " - " + t.Message
			}
			pdf.SetFont("Courier", "", 9)
			pdf.MultiCell(0, 5, row, "", "L", false)
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.Ln(2)

		if cov := sum.Coverage; cov != nil {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 8, "Coverage", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 6, fmt.Sprintf("%d/%d exported functions invoked (%.1f%%)",
				cov.Invoked, cov.Total, cov.Percent), "", 1, "L", false, 0, "")
			pdf.SetFont("Courier", "", 9)
			for _, mc := range cov.Modules {
				pdf.MultiCell(0, 5, fmt.Sprintf("%s  %d/%d (%.1f%%)",
					mc.Path, mc.Invoked, mc.Total, mc.Percent), "", "L", false)
			}
			pdf.SetFont("Helvetica", "", 11)
			pdf.Ln(2)
		}
	}

	if len(rep.Result.Checks) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Checks", "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", 9)
		for _, c := range rep.Result.Checks {
			row := fmt.Sprintf("[%s] %s", statusGlyph(c.Passed), c.Name)
			if c.Message != "" {
				row += " - " + c.Message
			}
			pdf.MultiCell(0, 5, row, "", "L", false)
		}
		pdf.SetFont("Helvetica", "", 11)
	}

	if rep.Result.Error != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Error", "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", 9)
		msg := rep.Result.Error.Message
		if rep.Result.Error.Location != "" {
			msg += "\nat " + rep.Result.Error.Location
		}
		pdf.MultiCell(0, 5, msg, "", "L", false)
	}

	return pdf.OutputFileAndClose(path)
}
