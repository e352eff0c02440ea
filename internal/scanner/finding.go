package scanner

import "time"

// Severity classifies how serious a finding is. Severities are ordered
// info < low < medium < high < critical; the ordering is used for report
// grouping only, never for control flow.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityOrder lists severities from most to least severe, the order
// reports present them in.
var SeverityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the position of s in the severity ordering; unknown
// severities rank below info.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Finding is one issue reported by a check. A Finding is immutable once
// created: a check appends it to its private accumulator and the scanner
// moves it into the shared result collection as-is.
type Finding struct {
	Location       string    `json:"url"`
	CheckName      string    `json:"check_name"`
	Severity       Severity  `json:"severity"`
	Description    string    `json:"description"`
	Evidence       string    `json:"evidence,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	ObservedAt     time.Time `json:"observed_at"`
}

// NewFinding builds a Finding stamped with the current time.
func NewFinding(location, checkName string, severity Severity, description, evidence, recommendation string) Finding {
	return Finding{
		Location:       location,
		CheckName:      checkName,
		Severity:       severity,
		Description:    description,
		Evidence:       evidence,
		Recommendation: recommendation,
		ObservedAt:     time.Now().UTC(),
	}
}

// ScanRun aggregates the outcome of one scan invocation. It is mutated
// only by the scanner's collection loop and is read-only once Scan
// returns.
type ScanRun struct {
	TargetOrigin string    `json:"target_origin"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	RequestCount int64     `json:"request_count"`
	Findings     []Finding `json:"findings"`
}

// Duration returns the wall-clock time the scan took.
func (r *ScanRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// CountBySeverity tallies findings per severity level.
func (r *ScanRun) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// CountByCheck tallies findings per check name.
func (r *ScanRun) CountByCheck() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.CheckName]++
	}
	return counts
}
