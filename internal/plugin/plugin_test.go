package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

func TestRegistrationsContainsDebugExposure(t *testing.T) {
	regs := Registrations()
	for _, r := range regs {
		if r.Name == "debug_exposure" {
			if r.New == nil {
				t.Error("debug_exposure registered without a factory")
			}
			return
		}
	}
	t.Fatalf("debug_exposure not found in %d registrations", len(regs))
}

func TestRegistrationsReturnsCopy(t *testing.T) {
	first := Registrations()
	if len(first) == 0 {
		t.Skip("no plugins registered")
	}
	first[0] = scanner.Registration{Name: "clobbered"}

	second := Registrations()
	if second[0].Name == "clobbered" {
		t.Error("mutating the returned slice leaked into the registry")
	}
}

func TestDebugExposureFindsDebugEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/debug" {
			fmt.Fprintln(w, `{"debug": true, "stack trace": "main.go:42"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	findings := runDebugExposure(t, srv.URL)

	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Severity != scanner.SeverityMedium {
		t.Errorf("severity = %s, want medium", findings[0].Severity)
	}
}

func TestDebugExposureFindsSecurityTxt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/security.txt", "/security.txt":
			fmt.Fprintln(w, "Contact: mailto:security@example.com")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	findings := runDebugExposure(t, srv.URL)

	if len(findings) != 2 {
		t.Fatalf("findings = %d, want one per security.txt location", len(findings))
	}
	for _, f := range findings {
		if f.Severity != scanner.SeverityLow {
			t.Errorf("security.txt severity = %s, want low", f.Severity)
		}
	}
}

func TestDebugExposureQuietTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	findings := runDebugExposure(t, srv.URL)
	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0 for a target with nothing exposed", len(findings))
	}
}

func runDebugExposure(t *testing.T, origin string) []scanner.Finding {
	t.Helper()
	tr, err := scanner.NewTransport(scanner.TransportConfig{}, 2)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	check, err := NewDebugExposureCheck(tr, origin)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	findings, err := check.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return findings
}
