package report

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

type xmlFinding struct {
	URL            string `xml:"url"`
	CheckName      string `xml:"check-name"`
	Severity       string `xml:"severity"`
	Description    string `xml:"description"`
	Evidence       string `xml:"evidence,omitempty"`
	Recommendation string `xml:"recommendation,omitempty"`
	Timestamp      int64  `xml:"timestamp"`
}

type xmlSeverityCount struct {
	Severity string `xml:"severity,attr"`
	Count    int    `xml:"count,attr"`
}

type xmlReport struct {
	XMLName      xml.Name           `xml:"webscan-report"`
	TargetOrigin string             `xml:"metadata>target-url"`
	ScanDate     string             `xml:"metadata>scan-date"`
	TotalIssues  int                `xml:"metadata>total-issues"`
	Summary      []xmlSeverityCount `xml:"summary>severity-count"`
	Findings     []xmlFinding       `xml:"results>result"`
}

// XMLRenderer produces the XML report.
type XMLRenderer struct{}

func (r *XMLRenderer) Render(run *scanner.ScanRun) ([]byte, error) {
	out := xmlReport{
		TargetOrigin: run.TargetOrigin,
		ScanDate:     run.StartedAt.Format(time.RFC3339),
		TotalIssues:  len(run.Findings),
	}

	counts := run.CountBySeverity()
	for _, severity := range scanner.SeverityOrder {
		if count := counts[severity]; count > 0 {
			out.Summary = append(out.Summary, xmlSeverityCount{
				Severity: string(severity),
				Count:    count,
			})
		}
	}

	for _, f := range run.Findings {
		out.Findings = append(out.Findings, xmlFinding{
			URL:            f.Location,
			CheckName:      f.CheckName,
			Severity:       string(f.Severity),
			Description:    f.Description,
			Evidence:       f.Evidence,
			Recommendation: f.Recommendation,
			Timestamp:      f.ObservedAt.UnixMilli(),
		})
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render XML report: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
