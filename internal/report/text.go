package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

var severityColors = map[scanner.Severity]func(a ...interface{}) string{
	scanner.SeverityCritical: color.New(color.FgRed, color.Bold).SprintFunc(),
	scanner.SeverityHigh:     color.New(color.FgRed).SprintFunc(),
	scanner.SeverityMedium:   color.New(color.FgYellow).SprintFunc(),
	scanner.SeverityLow:      color.New(color.FgBlue).SprintFunc(),
	scanner.SeverityInfo:     color.New(color.FgGreen).SprintFunc(),
}

func colorizeSeverity(s scanner.Severity, text string) string {
	if fn, ok := severityColors[s]; ok {
		return fn(text)
	}
	return text
}

// TextRenderer produces the human-readable console report: a severity
// summary followed by findings grouped from critical down to info.
type TextRenderer struct{}

func (r *TextRenderer) Render(run *scanner.ScanRun) ([]byte, error) {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "webscan Security Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Target: %s\n", run.TargetOrigin)
	fmt.Fprintf(&b, "Scan Date: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %s\n", run.Duration().Round(10*time.Millisecond))
	fmt.Fprintf(&b, "Requests: %d\n", run.RequestCount)
	fmt.Fprintf(&b, "Total Issues Found: %d\n\n", len(run.Findings))

	if len(run.Findings) == 0 {
		fmt.Fprintln(&b, "No security issues found.")
		return []byte(b.String()), nil
	}

	counts := run.CountBySeverity()
	fmt.Fprintln(&b, "Severity Summary:")
	for _, severity := range scanner.SeverityOrder {
		if count := counts[severity]; count > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", colorizeSeverity(severity, strings.ToUpper(string(severity))), count)
		}
	}
	fmt.Fprintln(&b)

	for _, severity := range scanner.SeverityOrder {
		var group []scanner.Finding
		for _, f := range run.Findings {
			if f.Severity == severity {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s SEVERITY ISSUES:\n", strings.ToUpper(string(severity)))
		fmt.Fprintln(&b, strings.Repeat("-", 40))
		for _, f := range group {
			writeFinding(&b, f)
			fmt.Fprintln(&b)
		}
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Scan completed.")
	fmt.Fprintln(&b, rule)
	return []byte(b.String()), nil
}

func writeFinding(b *strings.Builder, f scanner.Finding) {
	tag := colorizeSeverity(f.Severity, fmt.Sprintf("[%s]", strings.ToUpper(string(f.Severity))))
	fmt.Fprintf(b, "  %s %s\n", tag, f.CheckName)
	fmt.Fprintf(b, "  URL: %s\n", f.Location)
	fmt.Fprintf(b, "  Description: %s\n", f.Description)
	if f.Evidence != "" {
		fmt.Fprintf(b, "  Evidence: %s\n", f.Evidence)
	}
	if f.Recommendation != "" {
		fmt.Fprintf(b, "  Recommendation: %s\n", f.Recommendation)
	}
}
