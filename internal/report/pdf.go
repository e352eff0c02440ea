package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// PDFRenderer produces a printable report.
type PDFRenderer struct{}

func (r *PDFRenderer) Render(run *scanner.ScanRun) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "webscan Security Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Target: %s", run.TargetOrigin), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s", run.StartedAt.Format(time.RFC3339)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Finished: %s", run.FinishedAt.Format(time.RFC3339)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Requests: %d", run.RequestCount), "", 1, "", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Issues: %d", len(run.Findings)), "", 1, "", false, 0, "")
	counts := run.CountBySeverity()
	for _, severity := range scanner.SeverityOrder {
		if count := counts[severity]; count > 0 {
			pdf.CellFormat(0, 6, fmt.Sprintf("  %s: %d", strings.ToUpper(string(severity)), count), "", 1, "", false, 0, "")
		}
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Findings", "", 1, "", false, 0, "")
	pdf.Ln(2)

	for _, severity := range scanner.SeverityOrder {
		for _, f := range run.Findings {
			if f.Severity != severity {
				continue
			}
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}

			pdf.SetFont("Arial", "B", 11)
			pdf.SetFillColor(240, 240, 240)
			pdf.CellFormat(0, 7, fmt.Sprintf("[%s] %s", strings.ToUpper(string(f.Severity)), f.CheckName), "", 1, "", true, 0, "")
			pdf.Ln(1)

			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, fmt.Sprintf("URL: %s", f.Location), "", "", false)
			pdf.MultiCell(0, 5, fmt.Sprintf("Description: %s", f.Description), "", "", false)
			if f.Evidence != "" {
				pdf.SetFont("Arial", "I", 8)
				pdf.MultiCell(0, 4, fmt.Sprintf("Evidence: %s", f.Evidence), "", "", false)
			}
			if f.Recommendation != "" {
				pdf.SetFont("Arial", "", 8)
				pdf.MultiCell(0, 4, fmt.Sprintf("Recommendation: %s", f.Recommendation), "", "", false)
			}
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF report: %w", err)
	}
	return buf.Bytes(), nil
}
