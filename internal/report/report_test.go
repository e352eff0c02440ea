package report

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

func sampleRun() *scanner.ScanRun {
	started := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	return &scanner.ScanRun{
		TargetOrigin: "http://example.com",
		StartedAt:    started,
		FinishedAt:   started.Add(42 * time.Second),
		RequestCount: 137,
		Findings: []scanner.Finding{
			{
				Location:       "http://example.com/.env",
				CheckName:      "critical_file_exposed",
				Severity:       scanner.SeverityCritical,
				Description:    "Critical configuration file exposed: .env",
				Evidence:       "Status: 200",
				Recommendation: "Remove .env from web root",
				ObservedAt:     started.Add(3 * time.Second),
			},
			{
				Location:       "http://example.com/",
				CheckName:      "missing_security_header",
				Severity:       scanner.SeverityMedium,
				Description:    "Missing security header: X-Frame-Options",
				ObservedAt:     started.Add(5 * time.Second),
			},
			{
				Location:    "http://example.com/",
				CheckName:   "server_version_detected",
				Severity:    scanner.SeverityInfo,
				Description: "nginx version 1.18.0 detected",
				ObservedAt:  started.Add(7 * time.Second),
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range Formats() {
		r, err := ForFormat(format)
		require.NoError(t, err, format)
		require.NotNil(t, r, format)
	}

	r, err := ForFormat("console")
	require.NoError(t, err)
	assert.IsType(t, &TextRenderer{}, r)

	_, err = ForFormat("yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestTextRenderer(t *testing.T) {
	out, err := (&TextRenderer{}).Render(sampleRun())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "Target: http://example.com")
	assert.Contains(t, text, "Total Issues Found: 3")
	assert.Contains(t, text, "CRITICAL SEVERITY ISSUES:")
	assert.Contains(t, text, "critical_file_exposed")
	assert.Contains(t, text, "Recommendation: Remove .env from web root")

	// Critical group renders before the info group.
	assert.Less(t,
		strings.Index(text, "CRITICAL SEVERITY ISSUES:"),
		strings.Index(text, "INFO SEVERITY ISSUES:"))
}

func TestTextRendererEmptyRun(t *testing.T) {
	run := sampleRun()
	run.Findings = nil

	out, err := (&TextRenderer{}).Render(run)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No security issues found.")
}

func TestJSONRenderer(t *testing.T) {
	out, err := (&JSONRenderer{}).Render(sampleRun())
	require.NoError(t, err)

	var report struct {
		Scanner      string `json:"scanner"`
		TargetOrigin string `json:"target_origin"`
		StartedAt    int64  `json:"started_at"`
		Summary      struct {
			TotalIssues       int            `json:"total_issues"`
			SeverityBreakdown map[string]int `json:"severity_breakdown"`
			CheckBreakdown    map[string]int `json:"check_breakdown"`
		} `json:"summary"`
		Findings []struct {
			URL       string `json:"url"`
			Severity  string `json:"severity"`
			Timestamp int64  `json:"timestamp"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(out, &report))

	assert.Equal(t, "webscan", report.Scanner)
	assert.Equal(t, "http://example.com", report.TargetOrigin)
	assert.Equal(t, int64(1773480413589), report.StartedAt)
	assert.Equal(t, 3, report.Summary.TotalIssues)
	assert.Equal(t, 1, report.Summary.SeverityBreakdown["critical"])
	assert.Equal(t, 1, report.Summary.CheckBreakdown["missing_security_header"])
	require.Len(t, report.Findings, 3)
	assert.Equal(t, "http://example.com/.env", report.Findings[0].URL)
	assert.Equal(t, "critical", report.Findings[0].Severity)
}

func TestXMLRenderer(t *testing.T) {
	out, err := (&XMLRenderer{}).Render(sampleRun())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xml.Header))

	var report struct {
		TargetOrigin string `xml:"metadata>target-url"`
		TotalIssues  int    `xml:"metadata>total-issues"`
		Summary      []struct {
			Severity string `xml:"severity,attr"`
			Count    int    `xml:"count,attr"`
		} `xml:"summary>severity-count"`
		Findings []struct {
			URL      string `xml:"url"`
			Severity string `xml:"severity"`
		} `xml:"results>result"`
	}
	require.NoError(t, xml.Unmarshal(out, &report))

	assert.Equal(t, "http://example.com", report.TargetOrigin)
	assert.Equal(t, 3, report.TotalIssues)
	require.NotEmpty(t, report.Summary)
	assert.Equal(t, "critical", report.Summary[0].Severity)
	require.Len(t, report.Findings, 3)
}

func TestCSVRenderer(t *testing.T) {
	out, err := (&CSVRenderer{}).Render(sampleRun())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"URL", "Check Name", "Severity", "Description", "Evidence", "Recommendation", "Timestamp"}, rows[0])
	assert.Equal(t, "http://example.com/.env", rows[1][0])
	assert.Equal(t, "critical", rows[1][2])
	assert.Equal(t, "2026-03-14T09:26:56Z", rows[1][6])
}

func TestPDFRenderer(t *testing.T) {
	out, err := (&PDFRenderer{}).Render(sampleRun())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"), "output should start with the PDF magic bytes")
}
