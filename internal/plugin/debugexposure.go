package plugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

func init() {
	register(scanner.Registration{Name: "debug_exposure", New: NewDebugExposureCheck})
}

// DebugExposureCheck probes debug endpoints and security.txt
// disclosures.
type DebugExposureCheck struct {
	transport *scanner.Transport
	origin    string
	findings  []scanner.Finding
}

// NewDebugExposureCheck is the factory for the debug-exposure plugin
// check.
func NewDebugExposureCheck(t *scanner.Transport, origin string) (scanner.Check, error) {
	return &DebugExposureCheck{transport: t, origin: origin}, nil
}

func (c *DebugExposureCheck) Name() string { return "debug_exposure" }

func (c *DebugExposureCheck) Run(ctx context.Context) ([]scanner.Finding, error) {
	c.checkDebugEndpoint(ctx)
	c.checkSecurityTxt(ctx)
	return c.findings, nil
}

func (c *DebugExposureCheck) checkDebugEndpoint(ctx context.Context) {
	rawURL := c.transport.BuildURL(c.origin, "/api/debug")
	resp, err := c.transport.Get(ctx, rawURL)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return
	}
	content := strings.ToLower(string(data))
	if strings.Contains(content, "debug") || strings.Contains(content, "stack trace") {
		preview := content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		c.findings = append(c.findings, scanner.NewFinding(
			rawURL, "debug_exposure", scanner.SeverityMedium,
			"Debug information exposed in API endpoint",
			fmt.Sprintf("Debug content found in response: %s", preview),
			"Remove debug endpoints or protect them with authentication"))
	}
}

func (c *DebugExposureCheck) checkSecurityTxt(ctx context.Context) {
	for _, path := range []string{"/.well-known/security.txt", "/security.txt"} {
		rawURL := c.transport.BuildURL(c.origin, path)
		resp, err := c.transport.Get(ctx, rawURL)
		if err != nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			c.findings = append(c.findings, scanner.NewFinding(
				rawURL, "debug_exposure", scanner.SeverityLow,
				"Security.txt file found",
				"Security contact information available",
				"Review security.txt content for accuracy"))
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
