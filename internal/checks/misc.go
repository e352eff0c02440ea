package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

var dangerousMethods = []string{
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	"TRACE",
	http.MethodOptions,
}

var defaultPages = []string{
	"/default.aspx", "/default.asp", "/index.asp", "/index.aspx",
	"/test.php", "/test.asp", "/test.aspx", "/test.html",
	"/phpinfo.php", "/server-status", "/server-info",
	"/welcome.php", "/hello.php", "/example.php",
}

var defaultPageIndicators = []string{
	"welcome", "test page", "default page", "phpinfo",
	"server status", "apache", "nginx", "iis",
	"test script", "example page",
}

// MiscCheck covers HTTP method exposure, default pages, downgrade
// redirects and cookie attributes.
type MiscCheck struct {
	base
}

// NewMiscCheck is the factory for the miscellaneous check.
func NewMiscCheck(t *scanner.Transport, origin string) (scanner.Check, error) {
	return &MiscCheck{base{transport: t, origin: origin}}, nil
}

func (c *MiscCheck) Name() string { return "misc" }

func (c *MiscCheck) Run(ctx context.Context) ([]scanner.Finding, error) {
	c.checkHTTPMethods(ctx)
	c.checkDefaultPages(ctx)
	c.checkDowngradeRedirect(ctx)
	c.checkCookieSecurity(ctx)
	return c.findings, nil
}

func (c *MiscCheck) checkHTTPMethods(ctx context.Context) {
	for _, method := range dangerousMethods {
		resp := c.fetch(ctx, method, c.origin, nil)
		if resp == nil {
			continue
		}
		if resp.StatusCode != http.StatusMethodNotAllowed && resp.StatusCode != http.StatusNotImplemented {
			c.add(c.origin, "dangerous_method_allowed", scanner.SeverityMedium,
				fmt.Sprintf("Dangerous HTTP method allowed: %s", method),
				fmt.Sprintf("Method: %s\nStatus: %d", method, resp.StatusCode),
				fmt.Sprintf("Disable %s method in web server configuration if not required", method))
		}
		if method == "TRACE" && resp.StatusCode == http.StatusOK {
			c.add(c.origin, "trace_method_enabled", scanner.SeverityHigh,
				"TRACE method enabled - potential for XSS attacks",
				"TRACE method allows attackers to steal cookies and other headers",
				"Disable TRACE method in web server configuration")
		}
		drain(resp)
	}
}

func (c *MiscCheck) checkDefaultPages(ctx context.Context) {
	for _, page := range defaultPages {
		rawURL := c.transport.BuildURL(c.origin, page)
		resp := c.get(ctx, rawURL)
		if resp == nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			content := strings.ToLower(bodyPreview(resp, 4096))
			var matched []string
			for _, indicator := range defaultPageIndicators {
				if strings.Contains(content, indicator) {
					matched = append(matched, indicator)
				}
			}
			if len(matched) > 0 {
				c.add(rawURL, "default_page_exposed", scanner.SeverityLow,
					fmt.Sprintf("Default or test page exposed: %s", page),
					fmt.Sprintf("Status: %d\nContent contains: %s", resp.StatusCode, strings.Join(matched, " | ")),
					fmt.Sprintf("Remove or replace default page %s", page))
			}
		}
		drain(resp)
	}
}

// checkDowngradeRedirect looks for HTTPS origins whose plain-HTTP
// counterpart redirects back to HTTP, leaving users open to SSL
// stripping.
func (c *MiscCheck) checkDowngradeRedirect(ctx context.Context) {
	if !strings.HasPrefix(c.origin, "https://") {
		return
	}
	httpURL := "http://" + strings.TrimPrefix(c.origin, "https://")
	resp := c.fetch(ctx, http.MethodGet, httpURL, &scanner.RequestOptions{NoFollowRedirects: true})
	if resp == nil {
		return
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		if strings.HasPrefix(location, "http://") {
			c.add(c.origin, "ssl_stripping_vulnerable", scanner.SeverityHigh,
				"Potential SSL stripping vulnerability",
				fmt.Sprintf("HTTP URL redirects to: %s", location),
				"Ensure all HTTP requests redirect to HTTPS permanently")
		}
	}
}

// checkCookieSecurity inspects the raw Set-Cookie headers for missing
// Secure, HttpOnly and SameSite attributes. Working on the header text
// keeps attribute detection independent of any cookie-jar
// representation.
func (c *MiscCheck) checkCookieSecurity(ctx context.Context) {
	resp := c.get(ctx, c.origin)
	if resp == nil {
		return
	}
	defer drain(resp)

	for _, header := range resp.Header.Values("Set-Cookie") {
		name, _, found := strings.Cut(header, "=")
		if !found || name == "" {
			continue
		}
		name = strings.TrimSpace(name)
		lowered := strings.ToLower(header)

		var issues []string
		if strings.HasPrefix(c.origin, "https://") && !strings.Contains(lowered, "secure") {
			issues = append(issues, "Missing Secure flag")
		}
		if !strings.Contains(lowered, "httponly") {
			issues = append(issues, "Missing HttpOnly flag")
		}
		if !strings.Contains(lowered, "samesite") {
			issues = append(issues, "Missing SameSite attribute")
		}

		if len(issues) > 0 {
			c.add(c.origin, "insecure_cookie", scanner.SeverityMedium,
				fmt.Sprintf("Insecure cookie: %s", name),
				fmt.Sprintf("Issues: %s\nSet-Cookie: %s", strings.Join(issues, ", "), header),
				"Set Secure, HttpOnly, and SameSite attributes on cookies")
		}
	}
}
