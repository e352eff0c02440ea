package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config is the full configuration for one scan.
type Config struct {
	// TargetOrigin is the origin to scan; validated by New.
	TargetOrigin string
	// Workers sizes the fixed worker pool. Must be >= 1.
	Workers int
	// AllowPrivate permits targets that resolve to loopback or
	// private address space, for authorized internal testing.
	AllowPrivate bool
	// Transport configures the shared HTTP layer.
	Transport TransportConfig
}

// ProgressFunc is invoked from the collection loop after each check
// completes, successfully or not.
type ProgressFunc func(checkName string, findings int, err error)

// Scanner dispatches checks onto a fixed-size worker pool, merges their
// findings as they complete, and tracks wall-clock duration and request
// counts for the run.
type Scanner struct {
	cfg       Config
	origin    string
	transport *Transport
	log       *zap.SugaredLogger
	progress  ProgressFunc

	stopOnce sync.Once
	stop     chan struct{}
}

// New validates the configuration and builds a scanner. Origin safety
// checks run here, before the transport is constructed; a disallowed
// target never causes network activity.
func New(ctx context.Context, cfg Config, log *zap.SugaredLogger) (*Scanner, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("worker count must be >= 1, got %d", cfg.Workers)
	}

	origin, err := ValidateOrigin(ctx, cfg.TargetOrigin, cfg.AllowPrivate)
	if err != nil {
		return nil, err
	}

	transport, err := NewTransport(cfg.Transport, cfg.Workers)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		cfg:       cfg,
		origin:    origin,
		transport: transport,
		log:       log,
		stop:      make(chan struct{}),
	}, nil
}

// Origin returns the validated target origin.
func (s *Scanner) Origin() string {
	return s.origin
}

// Transport returns the shared transport, mainly so callers can report
// request counts.
func (s *Scanner) Transport() *Transport {
	return s.transport
}

// OnProgress registers a callback for per-check completion. Must be set
// before Scan is called.
func (s *Scanner) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// Stop requests cooperative cancellation: the collection loop stops
// waiting for further completions. Checks already running are not
// killed; their results are simply never collected.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

type outcome struct {
	name     string
	findings []Finding
	err      error
}

// Scan instantiates one check per registration, runs each check as one
// unit of work on the pool, and merges completed findings into the
// returned run. A check that fails to instantiate or errors mid-run is
// logged and contributes nothing; it never aborts its siblings.
func (s *Scanner) Scan(ctx context.Context, regs []Registration) *ScanRun {
	run := &ScanRun{
		TargetOrigin: s.origin,
		StartedAt:    time.Now().UTC(),
	}

	checks := make([]Check, 0, len(regs))
	for _, reg := range regs {
		check, err := reg.New(s.transport, s.origin)
		if err != nil {
			s.log.Warnw("skipping check that failed to instantiate", "check", reg.Name, "error", err)
			continue
		}
		checks = append(checks, check)
	}
	s.log.Infow("starting scan", "target", s.origin, "checks", len(checks), "workers", s.cfg.Workers)

	results := make(chan outcome, len(checks))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for _, check := range checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			findings, err := s.runCheck(ctx, c)
			results <- outcome{name: c.Name(), findings: findings, err: err}
		}(check)
	}

collect:
	for completed := 0; completed < len(checks); completed++ {
		select {
		case out := <-results:
			if out.err != nil {
				s.log.Errorw("check failed", "check", out.name, "error", out.err)
			} else {
				run.Findings = append(run.Findings, out.findings...)
				s.log.Debugw("check completed", "check", out.name, "findings", len(out.findings))
			}
			if s.progress != nil {
				s.progress(out.name, len(out.findings), out.err)
			}
		case <-s.stop:
			s.log.Warnw("stop requested, abandoning remaining checks", "collected", completed, "total", len(checks))
			break collect
		case <-ctx.Done():
			s.log.Warnw("context cancelled, abandoning remaining checks", "collected", completed, "total", len(checks))
			break collect
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.RequestCount = s.transport.RequestCount()
	s.log.Infow("scan finished",
		"target", s.origin,
		"findings", len(run.Findings),
		"requests", run.RequestCount,
		"duration", run.Duration(),
	)
	return run
}

// runCheck shields the pool from a misbehaving check: a panic inside
// Run becomes an ordinary check failure.
func (s *Scanner) runCheck(ctx context.Context, c Check) (findings []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return c.Run(ctx)
}
