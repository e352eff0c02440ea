package checks

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// serverSignature matches a known server product in the Server header
// and maps versions with published weaknesses.
type serverSignature struct {
	name               string
	patterns           []*regexp.Regexp
	vulnerableVersions map[string]string
}

var serverSignatures = []serverSignature{
	{
		name: "Apache",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Apache/([\d.]+)`),
		},
		vulnerableVersions: map[string]string{
			"2.4.49": "Path traversal vulnerability (CVE-2021-41773)",
			"2.4.50": "Path traversal vulnerability (CVE-2021-42013)",
		},
	},
	{
		name: "nginx",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)nginx/([\d.]+)`),
		},
		vulnerableVersions: map[string]string{
			"1.20.0": "Request smuggling vulnerability",
			"1.21.0": "Request smuggling vulnerability",
		},
	},
	{
		name: "IIS",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Microsoft-IIS/([\d.]+)`),
		},
	},
	{
		name: "Tomcat",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Apache-Coyote/([\d.]+)`),
			regexp.MustCompile(`(?i)Tomcat/([\d.]+)`),
		},
	},
}

// serverFiles often leak deployment details when reachable.
var serverFiles = []string{
	"/server-status",
	"/server-info",
	"/phpinfo.php",
	"/test.php",
	"/info.php",
	"/wp-config.php",
	"/.env",
	"/.git/config",
	"/WEB-INF/web.xml",
	"/META-INF/MANIFEST.MF",
}

var versionPaths = []string{
	"/version",
	"/api/version",
	"/status",
	"/health",
	"/readme.txt",
	"/changelog.txt",
	"/VERSION",
	"/version.json",
}

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`version[\s:]+([\d.]+)`),
	regexp.MustCompile(`release[\s:]+([\d.]+)`),
	regexp.MustCompile(`build[\s:]+([\d.]+)`),
}

// ServerInfoCheck fingerprints the server and hunts for version
// disclosure.
type ServerInfoCheck struct {
	base
}

// NewServerInfoCheck is the factory for the server-information check.
func NewServerInfoCheck(t *scanner.Transport, origin string) (scanner.Check, error) {
	return &ServerInfoCheck{base{transport: t, origin: origin}}, nil
}

func (c *ServerInfoCheck) Name() string { return "server_info" }

func (c *ServerInfoCheck) Run(ctx context.Context) ([]scanner.Finding, error) {
	c.checkServerHeaders(ctx)
	c.checkServerFiles(ctx)
	c.checkVersionDisclosure(ctx)
	return c.findings, nil
}

func (c *ServerInfoCheck) checkServerHeaders(ctx context.Context) {
	resp := c.get(ctx, c.origin)
	if resp == nil {
		return
	}
	defer drain(resp)

	if server := resp.Header.Get("Server"); server != "" {
		c.analyzeServerHeader(server)
	}
	if poweredBy := resp.Header.Get("X-Powered-By"); poweredBy != "" {
		c.add(c.origin, "powered_by_disclosure", scanner.SeverityLow,
			fmt.Sprintf("X-Powered-By header reveals technology: %s", poweredBy),
			fmt.Sprintf("X-Powered-By: %s", poweredBy),
			"Remove or obfuscate X-Powered-By header")
	}
	if aspNet := resp.Header.Get("X-AspNet-Version"); aspNet != "" {
		c.add(c.origin, "aspnet_version_disclosure", scanner.SeverityLow,
			fmt.Sprintf("ASP.NET version disclosed: %s", aspNet),
			fmt.Sprintf("X-AspNet-Version: %s", aspNet),
			"Configure ASP.NET to hide version information")
	}
}

func (c *ServerInfoCheck) analyzeServerHeader(serverHeader string) {
	detected := false

	for _, sig := range serverSignatures {
		for _, pattern := range sig.patterns {
			match := pattern.FindStringSubmatch(serverHeader)
			if match == nil {
				continue
			}
			detected = true
			version := match[1]

			if vuln, ok := sig.vulnerableVersions[version]; ok {
				c.add(c.origin, "vulnerable_server_version", scanner.SeverityHigh,
					fmt.Sprintf("Vulnerable %s version detected: %s - %s", sig.name, version, vuln),
					fmt.Sprintf("Server: %s", serverHeader),
					fmt.Sprintf("Upgrade %s to a patched version", sig.name))
			} else {
				c.add(c.origin, "server_version_detected", scanner.SeverityInfo,
					fmt.Sprintf("%s version %s detected", sig.name, version),
					fmt.Sprintf("Server: %s", serverHeader),
					"")
			}
			break
		}
	}

	if !detected {
		c.add(c.origin, "server_info_disclosure", scanner.SeverityLow,
			fmt.Sprintf("Server header reveals information: %s", serverHeader),
			fmt.Sprintf("Server: %s", serverHeader),
			"Configure server to hide or obfuscate server information")
	}
}

func (c *ServerInfoCheck) checkServerFiles(ctx context.Context) {
	for _, path := range serverFiles {
		rawURL := c.transport.BuildURL(c.origin, path)
		resp := c.get(ctx, rawURL)
		if resp == nil {
			continue
		}
		if resp.StatusCode == http.StatusOK && !isBinaryResponse(resp) {
			severity := scanner.SeverityMedium
			lowered := strings.ToLower(path)
			if strings.Contains(lowered, "config") || strings.Contains(lowered, "env") || strings.Contains(lowered, "web.xml") {
				severity = scanner.SeverityHigh
			}
			c.add(rawURL, "sensitive_file_exposed", severity,
				fmt.Sprintf("Sensitive file exposed: %s", path),
				fmt.Sprintf("Status: %d\nContent-Type: %s\nPreview: %s",
					resp.StatusCode, resp.Header.Get("Content-Type"), bodyPreview(resp, 200)),
				fmt.Sprintf("Remove or protect access to %s", path))
		}
		drain(resp)
	}
}

func (c *ServerInfoCheck) checkVersionDisclosure(ctx context.Context) {
	for _, path := range versionPaths {
		rawURL := c.transport.BuildURL(c.origin, path)
		resp := c.get(ctx, rawURL)
		if resp == nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			content := strings.ToLower(bodyPreview(resp, 4096))
			for _, pattern := range versionPatterns {
				matches := pattern.FindAllStringSubmatch(content, 3)
				for _, match := range matches {
					c.add(rawURL, "version_disclosure", scanner.SeverityLow,
						fmt.Sprintf("Version information disclosed: %s", match[1]),
						fmt.Sprintf("Found in: %s\nPattern: %s", path, pattern.String()),
						"Review and remove unnecessary version disclosures")
				}
			}
		}
		drain(resp)
	}
}
