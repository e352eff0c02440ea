package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/webscan/internal/checks"
	"github.com/khanhnv2901/webscan/internal/plugin"
	"github.com/khanhnv2901/webscan/internal/report"
	"github.com/khanhnv2901/webscan/internal/scanner"
)

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a target origin with the registered vulnerability checks",
	Example: `  webscan scan http://example.com
  webscan scan https://example.com --format json -v
  webscan scan http://example.com --checks security_headers,exposed_files --workers 5
  webscan scan http://example.com --rate 2 --rotate-every 25`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyConfigFile(cmd)
		return runScan(cmd.Context(), normalizeTarget(args[0]), &scanOpts)
	},
}

func runScan(ctx context.Context, target string, opts *scanOptions) error {
	renderer, err := report.ForFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.format == report.FormatPDF && opts.outputFile == "" {
		return errors.New("pdf output requires --output")
	}

	cfg, err := buildScanConfig(target, opts)
	if err != nil {
		return err
	}

	regs, err := selectChecks(opts.checks)
	if err != nil {
		return err
	}

	s, err := scanner.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// First interrupt stops collecting cooperatively; checks already
	// in flight are left to finish on their own.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, colorWarn("stop requested, collecting completed checks only"))
		s.Stop()
	}()

	var progress *progressPrinter
	if !quiet && !opts.noProgress {
		progress = newProgressPrinter(len(regs))
		s.OnProgress(func(checkName string, findings int, err error) {
			progress.Increment(findings, err != nil)
		})
		progress.Start()
	}

	run := s.Scan(ctx, regs)
	if progress != nil {
		progress.Stop()
	}

	if opts.saveRun != "" {
		if err := saveRun(opts.saveRun, run); err != nil {
			return err
		}
		logger.Infow("scan run persisted", "path", opts.saveRun)
	}

	if err := writeReport(renderer, run, opts.outputFile); err != nil {
		return err
	}

	printSummary(run)
	return nil
}

// selectChecks merges built-in and plugin registrations, then applies
// the comma-separated name filter. Unknown names fail the command
// before any scanning starts.
func selectChecks(filter string) ([]scanner.Registration, error) {
	all := append(checks.Builtin(), plugin.Registrations()...)
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "all") {
		return all, nil
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = true
		}
	}

	var selected []scanner.Registration
	for _, reg := range all {
		if wanted[reg.Name] {
			selected = append(selected, reg)
			delete(wanted, reg.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for name := range wanted {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("unknown checks: %s (run 'webscan checks' to list them)", strings.Join(unknown, ", "))
	}
	if len(selected) == 0 {
		return nil, errors.New("no checks selected")
	}
	return selected, nil
}

func saveRun(path string, run *scanner.ScanRun) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create run file: %w", err)
	}
	defer f.Close()
	return report.Save(f, run)
}

func writeReport(renderer report.Renderer, run *scanner.ScanRun, outputFile string) error {
	data, err := renderer.Render(run)
	if err != nil {
		return err
	}
	if outputFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", colorInfo("Report written to:"), outputFile)
	return nil
}

func printSummary(run *scanner.ScanRun) {
	if quiet {
		return
	}
	counts := run.CountBySeverity()
	parts := make([]string, 0, len(counts))
	for _, severity := range scanner.SeverityOrder {
		if count := counts[severity]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", severity, count))
		}
	}
	line := fmt.Sprintf("Scan completed in %s with %d request(s), %d issue(s) found",
		run.Duration().Round(10*time.Millisecond), run.RequestCount, len(run.Findings))
	fmt.Fprintln(os.Stderr, colorSuccess(line))
	if len(parts) > 0 {
		fmt.Fprintln(os.Stderr, colorInfo("Severity breakdown: ")+strings.Join(parts, ", "))
	}
}

func init() {
	scanCmd.Flags().StringVarP(&scanOpts.checks, "checks", "c", "all", "comma-separated list of checks to run")
	scanCmd.Flags().IntVarP(&scanOpts.workers, "workers", "t", defaultWorkers, "number of concurrent workers")
	scanCmd.Flags().DurationVar(&scanOpts.timeout, "timeout", defaultTimeout, "per-request timeout")
	scanCmd.Flags().DurationVar(&scanOpts.delay, "delay", defaultDelay, "fixed delay before each request")
	scanCmd.Flags().Float64Var(&scanOpts.rate, "rate", 0, "maximum requests per second across all workers (0 = unlimited)")
	scanCmd.Flags().IntVar(&scanOpts.retries, "retries", defaultRetries, "retries per request on transport failures")
	scanCmd.Flags().IntVar(&scanOpts.rotateEvery, "rotate-every", defaultRotateEvery, "rotate the User-Agent after this many requests (0 = never)")
	scanCmd.Flags().StringVar(&scanOpts.userAgent, "user-agent", "", "custom User-Agent string")
	scanCmd.Flags().StringArrayVarP(&scanOpts.headers, "header", "H", nil, "extra request header (\"Name: value\", repeatable)")
	scanCmd.Flags().StringVar(&scanOpts.proxy, "proxy", "", "proxy URL")
	scanCmd.Flags().BoolVarP(&scanOpts.insecure, "insecure", "k", false, "skip TLS certificate verification")
	scanCmd.Flags().BoolVar(&scanOpts.allowPrivate, "allow-private", false, "allow targets that resolve to private or loopback addresses")
	scanCmd.Flags().StringVarP(&scanOpts.format, "format", "f", report.FormatText, "output format: "+strings.Join(report.Formats(), ", "))
	scanCmd.Flags().StringVarP(&scanOpts.outputFile, "output", "o", "", "write the report to a file instead of stdout")
	scanCmd.Flags().StringVar(&scanOpts.saveRun, "save-run", "", "persist the raw scan run as JSON for later reporting")
	scanCmd.Flags().BoolVar(&scanOpts.noProgress, "no-progress", false, "disable the progress indicator")
}
