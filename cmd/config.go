package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

const (
	defaultWorkers     = 10
	defaultTimeout     = 30 * time.Second
	defaultDelay       = 100 * time.Millisecond
	defaultRetries     = 3
	defaultRotateEvery = 0
)

// scanOptions consolidates the flag-driven settings of the scan
// command.
type scanOptions struct {
	checks       string
	workers      int
	timeout      time.Duration
	delay        time.Duration
	rate         float64
	retries      int
	rotateEvery  int
	userAgent    string
	headers      []string
	proxy        string
	insecure     bool
	allowPrivate bool
	format       string
	outputFile   string
	saveRun      string
	noProgress   bool
}

// flagConfigKeys maps scan flags to their config-file keys; values from
// $HOME/.webscan.yaml back-fill flags the user did not set.
var flagConfigKeys = map[string]string{
	"checks":       "scanner.checks",
	"workers":      "scanner.workers",
	"timeout":      "scanner.timeout",
	"delay":        "scanner.delay",
	"rate":         "scanner.rate",
	"retries":      "scanner.retries",
	"rotate-every": "scanner.rotate_every",
	"user-agent":   "scanner.user_agent",
	"proxy":        "network.proxy",
	"insecure":     "network.insecure",
	"format":       "output.format",
	"output":       "output.file",
}

// applyConfigFile overlays config-file values onto unchanged flags.
// Explicit flags always win.
func applyConfigFile(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagConfigKeys[f.Name]
		if !ok || f.Changed || !viper.IsSet(key) {
			return
		}
		_ = f.Value.Set(viper.GetString(key))
	})
}

// buildScanConfig translates CLI options into the scanner
// configuration.
func buildScanConfig(target string, opts *scanOptions) (scanner.Config, error) {
	headers, err := parseHeaderFlags(opts.headers)
	if err != nil {
		return scanner.Config{}, err
	}

	var userAgents []string
	if opts.userAgent != "" {
		userAgents = []string{opts.userAgent}
	}

	return scanner.Config{
		TargetOrigin: target,
		Workers:      opts.workers,
		AllowPrivate: opts.allowPrivate,
		Transport: scanner.TransportConfig{
			Timeout:           opts.timeout,
			Delay:             opts.delay,
			MaxRetries:        opts.retries,
			RequestsPerSecond: opts.rate,
			UserAgents:        userAgents,
			RotateEvery:       opts.rotateEvery,
			Headers:           headers,
			Proxy:             opts.proxy,
			VerifyTLS:         !opts.insecure,
		},
	}, nil
}

// parseHeaderFlags turns repeated "Name: value" flags into a header
// map.
func parseHeaderFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, found := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// normalizeTarget defaults a bare host to http, matching how operators
// usually type targets.
func normalizeTarget(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "http://" + target
}
