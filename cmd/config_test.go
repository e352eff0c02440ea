package cmd

import (
	"testing"
	"time"
)

func TestParseHeaderFlags(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "single header",
			raw:  []string{"Authorization: Bearer token"},
			want: map[string]string{"Authorization": "Bearer token"},
		},
		{
			name: "whitespace trimmed",
			raw:  []string{"  X-Api-Key :  secret  "},
			want: map[string]string{"X-Api-Key": "secret"},
		},
		{
			name: "multiple headers",
			raw:  []string{"A: 1", "B: 2"},
			want: map[string]string{"A": "1", "B": "2"},
		},
		{
			name: "none",
			raw:  nil,
			want: nil,
		},
		{
			name:    "missing colon",
			raw:     []string{"not-a-header"},
			wantErr: true,
		},
		{
			name:    "empty name",
			raw:     []string{": value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeaderFlags(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseHeaderFlags(%v) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeaderFlags(%v) error = %v", tt.raw, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseHeaderFlags(%v) = %v, want %v", tt.raw, got, tt.want)
			}
			for name, value := range tt.want {
				if got[name] != value {
					t.Errorf("header %q = %q, want %q", name, got[name], value)
				}
			}
		})
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "http://example.com"},
		{"example.com:8080/app", "http://example.com:8080/app"},
		{"http://example.com", "http://example.com"},
		{"https://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		if got := normalizeTarget(tt.in); got != tt.want {
			t.Errorf("normalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildScanConfig(t *testing.T) {
	opts := &scanOptions{
		workers:     5,
		timeout:     10 * time.Second,
		delay:       250 * time.Millisecond,
		rate:        2.5,
		retries:     1,
		rotateEvery: 25,
		userAgent:   "custom-agent/1.0",
		headers:     []string{"X-Scan-Id: run-7"},
		insecure:    true,
	}

	cfg, err := buildScanConfig("http://example.com", opts)
	if err != nil {
		t.Fatalf("buildScanConfig() error = %v", err)
	}

	if cfg.TargetOrigin != "http://example.com" || cfg.Workers != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
	tc := cfg.Transport
	if tc.Timeout != 10*time.Second || tc.Delay != 250*time.Millisecond {
		t.Errorf("timing config %+v", tc)
	}
	if tc.RequestsPerSecond != 2.5 || tc.MaxRetries != 1 || tc.RotateEvery != 25 {
		t.Errorf("rate config %+v", tc)
	}
	if len(tc.UserAgents) != 1 || tc.UserAgents[0] != "custom-agent/1.0" {
		t.Errorf("UserAgents = %v, want the custom agent only", tc.UserAgents)
	}
	if tc.Headers["X-Scan-Id"] != "run-7" {
		t.Errorf("Headers = %v", tc.Headers)
	}
	if tc.VerifyTLS {
		t.Error("insecure flag should disable TLS verification")
	}
}

func TestBuildScanConfigBadHeader(t *testing.T) {
	opts := &scanOptions{headers: []string{"broken"}}
	if _, err := buildScanConfig("http://example.com", opts); err == nil {
		t.Fatal("expected error for malformed header flag")
	}
}
