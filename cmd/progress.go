package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// progressPrinter shows per-check completion on stderr while the report
// itself goes to stdout.
type progressPrinter struct {
	total    int
	mu       sync.Mutex
	done     int
	failed   int
	findings int
	updates  chan struct{}
	quit     chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		total:   total,
		updates: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Increment records one completed check.
func (p *progressPrinter) Increment(findings int, failed bool) {
	p.mu.Lock()
	p.done++
	p.findings += findings
	if failed {
		p.failed++
	}
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 80))
}

func (p *progressPrinter) loop() {
	for {
		select {
		case <-p.updates:
			p.print()
		case <-p.quit:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("[%d/%d] checks complete, %d finding(s)", p.done, p.total, p.findings)
	if p.failed > 0 {
		line += fmt.Sprintf(", %d failed", p.failed)
	}
	fmt.Fprintf(os.Stderr, "\r%-80s", line)
}
