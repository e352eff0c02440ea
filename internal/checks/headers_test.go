package checks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

func newCheckTransport(t *testing.T) *scanner.Transport {
	t.Helper()
	tr, err := scanner.NewTransport(scanner.TransportConfig{}, 2)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	return tr
}

func runCheck(t *testing.T, factory scanner.Factory, origin string) []scanner.Finding {
	t.Helper()
	check, err := factory(newCheckTransport(t), origin)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	findings, err := check.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return findings
}

func countByName(findings []scanner.Finding, name string) int {
	n := 0
	for _, f := range findings {
		if f.CheckName == name {
			n++
		}
	}
	return n
}

func TestHeaderCheckFlagsMissingRequiredHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No security headers at all.
	}))
	defer srv.Close()

	findings := runCheck(t, NewHeaderCheck, srv.URL)

	// Three required headers are missing on the root plus four probe
	// paths.
	if got := countByName(findings, "missing_security_header"); got != 15 {
		t.Errorf("missing_security_header findings = %d, want 15", got)
	}
}

func TestHeaderCheckWeakValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "ALLOWALL")
		w.Header().Set("Strict-Transport-Security", "max-age=0")
		w.Header().Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}))
	defer srv.Close()

	findings := runCheck(t, NewHeaderCheck, srv.URL)

	for _, want := range []string{"weak_x_frame_options", "hsts_disabled", "permissive_csp"} {
		if countByName(findings, want) == 0 {
			t.Errorf("expected at least one %s finding", want)
		}
	}
	if countByName(findings, "missing_security_header") != 0 {
		t.Error("required headers present but reported missing")
	}
}

func TestHeaderCheckServerDisclosure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "Apache/2.4.41 (Ubuntu)")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000")
	}))
	defer srv.Close()

	findings := runCheck(t, NewHeaderCheck, srv.URL)

	if countByName(findings, "server_info_disclosure") == 0 {
		t.Error("expected a server_info_disclosure finding for a detailed Server header")
	}
}

func TestHeaderCheckUnreachableTargetYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := srv.URL
	srv.Close()

	findings := runCheck(t, NewHeaderCheck, origin)

	if len(findings) != 0 {
		t.Errorf("unreachable target produced %d findings, want 0", len(findings))
	}
}
