package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// headerPolicy describes one security header we look for.
type headerPolicy struct {
	required       bool
	recommendation string
}

var securityHeaders = map[string]headerPolicy{
	"X-Frame-Options": {
		required:       true,
		recommendation: "Set to DENY or SAMEORIGIN",
	},
	"X-Content-Type-Options": {
		required:       true,
		recommendation: "Set to nosniff",
	},
	"X-XSS-Protection": {
		required:       false,
		recommendation: "Set to 1; mode=block",
	},
	"Strict-Transport-Security": {
		required:       true,
		recommendation: "Set with appropriate max-age",
	},
	"Content-Security-Policy": {
		required:       false,
		recommendation: "Implement appropriate CSP policy",
	},
	"Referrer-Policy": {
		required:       false,
		recommendation: "Set to strict-origin-when-cross-origin or similar",
	},
	"Permissions-Policy": {
		required:       false,
		recommendation: "Restrict unnecessary permissions",
	},
}

// headerProbePaths are extra paths whose responses often carry
// different headers than the root document.
var headerProbePaths = []string{"/admin", "/login", "/api", "/static"}

// HeaderCheck inspects security headers and their configuration.
type HeaderCheck struct {
	base
}

// NewHeaderCheck is the factory for the security-header check.
func NewHeaderCheck(t *scanner.Transport, origin string) (scanner.Check, error) {
	return &HeaderCheck{base{transport: t, origin: origin}}, nil
}

func (c *HeaderCheck) Name() string { return "security_headers" }

func (c *HeaderCheck) Run(ctx context.Context) ([]scanner.Finding, error) {
	c.inspect(ctx, c.origin)
	for _, path := range headerProbePaths {
		c.inspect(ctx, c.transport.BuildURL(c.origin, path))
	}
	return c.findings, nil
}

func (c *HeaderCheck) inspect(ctx context.Context, rawURL string) {
	resp := c.get(ctx, rawURL)
	if resp == nil {
		return
	}
	defer drain(resp)

	for name, policy := range securityHeaders {
		if policy.required && resp.Header.Get(name) == "" {
			c.add(rawURL, "missing_security_header", scanner.SeverityMedium,
				fmt.Sprintf("Missing security header: %s", name),
				"Header not present in response",
				policy.recommendation)
		}
	}

	c.checkFrameOptions(rawURL, resp.Header)
	c.checkHSTS(rawURL, resp.Header)
	c.checkCSP(rawURL, resp.Header)
	c.checkServerHeader(rawURL, resp.Header)
}

func (c *HeaderCheck) checkFrameOptions(rawURL string, headers http.Header) {
	value := headers.Get("X-Frame-Options")
	if value == "" {
		return
	}
	switch strings.ToUpper(value) {
	case "DENY", "SAMEORIGIN":
	default:
		c.add(rawURL, "weak_x_frame_options", scanner.SeverityLow,
			fmt.Sprintf("Weak X-Frame-Options value: %s", strings.ToUpper(value)),
			fmt.Sprintf("X-Frame-Options: %s", value),
			"Set to 'DENY' or 'SAMEORIGIN'")
	}
}

func (c *HeaderCheck) checkHSTS(rawURL string, headers http.Header) {
	value := headers.Get("Strict-Transport-Security")
	if value == "" {
		return
	}
	switch {
	case !strings.Contains(value, "max-age="):
		c.add(rawURL, "weak_hsts", scanner.SeverityMedium,
			"HSTS header missing max-age directive",
			fmt.Sprintf("Strict-Transport-Security: %s", value),
			"Include max-age directive (e.g. max-age=31536000)")
	case strings.Contains(value, "max-age=0"):
		c.add(rawURL, "hsts_disabled", scanner.SeverityHigh,
			"HSTS is disabled (max-age=0)",
			fmt.Sprintf("Strict-Transport-Security: %s", value),
			"Remove max-age=0 or set an appropriate max-age value")
	}
}

func (c *HeaderCheck) checkCSP(rawURL string, headers http.Header) {
	value := headers.Get("Content-Security-Policy")
	if value == "" {
		return
	}
	if strings.Contains(value, "'unsafe-inline'") || strings.Contains(value, "'unsafe-eval'") {
		c.add(rawURL, "permissive_csp", scanner.SeverityMedium,
			"CSP contains unsafe directives",
			fmt.Sprintf("Content-Security-Policy: %s", value),
			"Remove 'unsafe-inline' and 'unsafe-eval' from CSP")
	}
}

func (c *HeaderCheck) checkServerHeader(rawURL string, headers http.Header) {
	serverInfo := headers.Get("Server")
	if serverInfo == "" {
		return
	}
	lowered := strings.ToLower(serverInfo)
	known := strings.Contains(lowered, "apache") ||
		strings.Contains(lowered, "nginx") ||
		strings.Contains(lowered, "iis") ||
		strings.Contains(lowered, "tomcat")
	if known && strings.ContainsAny(serverInfo, "/()[]") {
		c.add(rawURL, "server_info_disclosure", scanner.SeverityLow,
			fmt.Sprintf("Server header reveals detailed version information: %s", serverInfo),
			fmt.Sprintf("Server: %s", serverInfo),
			"Configure server to hide version details in Server header")
	}
}
