package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// CSVRenderer produces one row per finding for spreadsheet analysis.
type CSVRenderer struct{}

func (r *CSVRenderer) Render(run *scanner.ScanRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"URL", "Check Name", "Severity", "Description", "Evidence", "Recommendation", "Timestamp"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("render CSV report: %w", err)
	}

	for _, f := range run.Findings {
		row := []string{
			f.Location,
			f.CheckName,
			string(f.Severity),
			f.Description,
			f.Evidence,
			f.Recommendation,
			f.ObservedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("render CSV report: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("render CSV report: %w", err)
	}
	return buf.Bytes(), nil
}
