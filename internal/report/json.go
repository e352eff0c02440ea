package report

import (
	"encoding/json"
	"fmt"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

type jsonSummary struct {
	TotalIssues       int            `json:"total_issues"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	CheckBreakdown    map[string]int `json:"check_breakdown"`
}

type jsonReport struct {
	Scanner      string          `json:"scanner"`
	TargetOrigin string          `json:"target_origin"`
	StartedAt    int64           `json:"started_at"`
	FinishedAt   int64           `json:"finished_at"`
	RequestCount int64           `json:"request_count"`
	Summary      jsonSummary     `json:"summary"`
	Findings     []findingRecord `json:"findings"`
}

// JSONRenderer produces the machine-readable report.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(run *scanner.ScanRun) ([]byte, error) {
	record := toRecord(run)

	severityBreakdown := make(map[string]int)
	for severity, count := range run.CountBySeverity() {
		severityBreakdown[string(severity)] = count
	}

	out := jsonReport{
		Scanner:      "webscan",
		TargetOrigin: record.TargetOrigin,
		StartedAt:    record.StartedAt,
		FinishedAt:   record.FinishedAt,
		RequestCount: record.RequestCount,
		Summary: jsonSummary{
			TotalIssues:       len(run.Findings),
			SeverityBreakdown: severityBreakdown,
			CheckBreakdown:    run.CountByCheck(),
		},
		Findings: record.Findings,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render JSON report: %w", err)
	}
	return data, nil
}
