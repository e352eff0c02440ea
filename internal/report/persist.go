package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// runRecord is the persisted form of a scan run. Timestamps are epoch
// milliseconds so a round trip reproduces them as plain numbers.
type runRecord struct {
	TargetOrigin string          `json:"target_origin"`
	StartedAt    int64           `json:"started_at"`
	FinishedAt   int64           `json:"finished_at"`
	RequestCount int64           `json:"request_count"`
	Findings     []findingRecord `json:"findings"`
}

type findingRecord struct {
	Location       string `json:"url"`
	CheckName      string `json:"check_name"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Evidence       string `json:"evidence"`
	Recommendation string `json:"recommendation"`
	Timestamp      int64  `json:"timestamp"`
}

func toRecord(run *scanner.ScanRun) runRecord {
	record := runRecord{
		TargetOrigin: run.TargetOrigin,
		StartedAt:    run.StartedAt.UnixMilli(),
		FinishedAt:   run.FinishedAt.UnixMilli(),
		RequestCount: run.RequestCount,
		Findings:     make([]findingRecord, 0, len(run.Findings)),
	}
	for _, f := range run.Findings {
		record.Findings = append(record.Findings, findingRecord{
			Location:       f.Location,
			CheckName:      f.CheckName,
			Severity:       string(f.Severity),
			Description:    f.Description,
			Evidence:       f.Evidence,
			Recommendation: f.Recommendation,
			Timestamp:      f.ObservedAt.UnixMilli(),
		})
	}
	return record
}

func fromRecord(record runRecord) *scanner.ScanRun {
	run := &scanner.ScanRun{
		TargetOrigin: record.TargetOrigin,
		StartedAt:    time.UnixMilli(record.StartedAt).UTC(),
		FinishedAt:   time.UnixMilli(record.FinishedAt).UTC(),
		RequestCount: record.RequestCount,
		Findings:     make([]scanner.Finding, 0, len(record.Findings)),
	}
	for _, f := range record.Findings {
		run.Findings = append(run.Findings, scanner.Finding{
			Location:       f.Location,
			CheckName:      f.CheckName,
			Severity:       scanner.Severity(f.Severity),
			Description:    f.Description,
			Evidence:       f.Evidence,
			Recommendation: f.Recommendation,
			ObservedAt:     time.UnixMilli(f.Timestamp).UTC(),
		})
	}
	return run
}

// Save writes a scan run as an indented JSON record.
func Save(w io.Writer, run *scanner.ScanRun) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(toRecord(run)); err != nil {
		return fmt.Errorf("persist scan run: %w", err)
	}
	return nil
}

// Load reads a scan run persisted by Save.
func Load(r io.Reader) (*scanner.ScanRun, error) {
	var record runRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return nil, fmt.Errorf("load scan run: %w", err)
	}
	return fromRecord(record), nil
}
