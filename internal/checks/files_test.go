package checks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

func TestFileCheckFlagsExposedCriticalFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.env" {
			fmt.Fprintln(w, "DB_PASSWORD=hunter2")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	findings := runCheck(t, NewFileCheck, srv.URL)

	if countByName(findings, "critical_file_exposed") != 1 {
		t.Errorf("expected one critical_file_exposed finding, got %d", countByName(findings, "critical_file_exposed"))
	}
	for _, f := range findings {
		if f.CheckName == "critical_file_exposed" && f.Severity != scanner.SeverityCritical {
			t.Errorf("critical file severity = %s, want critical", f.Severity)
		}
	}
	// .env is also in the config_files probe list.
	if countByName(findings, "vulnerable_file_exposed") == 0 {
		t.Error("expected .env to also surface as vulnerable_file_exposed")
	}
}

func TestFileCheckSeverityFollowsCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/backup.sql":
			fmt.Fprintln(w, "CREATE TABLE users;")
		case "/readme.txt":
			fmt.Fprintln(w, "installation notes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	findings := runCheck(t, NewFileCheck, srv.URL)

	bySeverity := map[string]scanner.Severity{}
	for _, f := range findings {
		if f.CheckName == "vulnerable_file_exposed" {
			bySeverity[f.Location] = f.Severity
		}
	}
	if got := bySeverity[srv.URL+"/backup.sql"]; got != scanner.SeverityHigh {
		t.Errorf("backup.sql severity = %s, want high", got)
	}
	if got := bySeverity[srv.URL+"/readme.txt"]; got != scanner.SeverityLow {
		t.Errorf("readme.txt severity = %s, want low", got)
	}
}

func TestFileCheckDetectsDirectoryListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/backup/" {
			fmt.Fprintln(w, "<html><title>Index of /backup</title></html>")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	findings := runCheck(t, NewFileCheck, srv.URL)

	if countByName(findings, "directory_listing_enabled") != 1 {
		t.Errorf("expected one directory_listing_enabled finding, got %d", countByName(findings, "directory_listing_enabled"))
	}
}

func TestFileCheckIgnoresBinaryResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/backup.zip" {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte{0x50, 0x4b, 0x03, 0x04})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	findings := runCheck(t, NewFileCheck, srv.URL)

	if countByName(findings, "vulnerable_file_exposed") != 0 {
		t.Error("binary response should not be reported as an exposed text file")
	}
}
