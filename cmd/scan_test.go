package cmd

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSelectChecksAll(t *testing.T) {
	for _, filter := range []string{"", "all", "ALL"} {
		regs, err := selectChecks(filter)
		if err != nil {
			t.Fatalf("selectChecks(%q) error = %v", filter, err)
		}
		names := make(map[string]bool)
		for _, r := range regs {
			names[r.Name] = true
		}
		for _, want := range []string{"security_headers", "server_info", "exposed_files", "misc", "debug_exposure"} {
			if !names[want] {
				t.Errorf("selectChecks(%q) missing %s", filter, want)
			}
		}
	}
}

func TestSelectChecksFilter(t *testing.T) {
	regs, err := selectChecks("security_headers, exposed_files")
	if err != nil {
		t.Fatalf("selectChecks() error = %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("selected %d checks, want 2", len(regs))
	}
	if regs[0].Name != "security_headers" || regs[1].Name != "exposed_files" {
		t.Errorf("selection order = %s, %s; want registration order", regs[0].Name, regs[1].Name)
	}
}

func TestSelectChecksUnknownName(t *testing.T) {
	_, err := selectChecks("security_headers,sql_injection")
	if err == nil {
		t.Fatal("expected error for unknown check name")
	}
	if !strings.Contains(err.Error(), "sql_injection") {
		t.Errorf("error %q should name the unknown check", err)
	}
}

func TestSelectChecksEmptySelection(t *testing.T) {
	if _, err := selectChecks(" , ,"); err == nil {
		t.Fatal("expected error when the filter selects nothing")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		quiet     bool
		enabled   zapcore.Level
		disabled  zapcore.Level
	}{
		{"default warns", 0, false, zapcore.WarnLevel, zapcore.InfoLevel},
		{"verbose informs", 1, false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"double verbose debugs", 2, false, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"quiet errors only", 0, true, zapcore.ErrorLevel, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLogger(tt.verbosity, tt.quiet)
			defer l.Sync()
			core := l.Desugar().Core()
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if core.Enabled(tt.disabled) {
				t.Errorf("level %v should be disabled", tt.disabled)
			}
		})
	}
}
