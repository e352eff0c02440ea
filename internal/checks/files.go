package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// commonFiles lists probe paths by category; the category drives the
// severity and the remediation advice.
var commonFiles = map[string][]string{
	"backup_files": {
		"backup.sql", "backup.tar.gz", "backup.zip",
		"db.sql", "database.sql", "dump.sql",
		".backup", ".bak", ".old", ".orig",
		"www.sql", "site.sql", "data.sql",
	},
	"config_files": {
		"config.php", "config.inc.php", "config.ini",
		"settings.php", "database.php", "db.php",
		"configuration.php", "config.json", "settings.json",
		"web.config", "application.properties",
		".env", ".env.local", ".env.production",
	},
	"admin_panels": {
		"admin/", "admin.php", "administrator/", "adminpanel/",
		"cpanel/", "controlpanel/", "manage/", "manager/",
		"admin-login.php", "admin_login.php", "login.php",
	},
	"log_files": {
		"error.log", "access.log", "debug.log",
		"error_log", "access_log", "debug_log",
		"logs/error.log", "logs/access.log",
	},
	"source_code": {
		".git/", ".svn/", ".hg/", ".bzr/",
		".gitignore", ".gitattributes",
		"composer.json", "package.json", "requirements.txt",
		"htaccess", ".htaccess",
	},
	"documentation": {
		"readme.txt", "README.txt", "readme.md", "README.md",
		"changelog.txt", "CHANGELOG.txt", "changelog.md",
		"install.txt", "INSTALL.txt", "install.md",
		"license.txt", "LICENSE.txt", "license.md",
	},
}

// criticalFiles should never be reachable over HTTP.
var criticalFiles = []string{
	".env", ".git/config", ".svn/entries", "web.config",
	"application.properties", "database.properties",
	"wp-config.php", "config.php", "settings.php",
}

var listableDirs = []string{
	"backup/", "backups/", "old/", "archive/",
	"tmp/", "temp/", "cache/", "logs/",
	"upload/", "uploads/", "files/", "images/",
	"css/", "js/", "assets/", "static/",
}

var listingIndicators = []string{
	"index of", "parent directory", "directory listing",
	"<title>index of", "<h1>index of",
}

// FileCheck probes for exposed files, directories and listings.
type FileCheck struct {
	base
}

// NewFileCheck is the factory for the exposed-file check.
func NewFileCheck(t *scanner.Transport, origin string) (scanner.Check, error) {
	return &FileCheck{base{transport: t, origin: origin}}, nil
}

func (c *FileCheck) Name() string { return "exposed_files" }

func (c *FileCheck) Run(ctx context.Context) ([]scanner.Finding, error) {
	c.checkCriticalFiles(ctx)
	c.checkCommonFiles(ctx)
	c.checkDirectoryListing(ctx)
	return c.findings, nil
}

func (c *FileCheck) checkCriticalFiles(ctx context.Context) {
	for _, path := range criticalFiles {
		rawURL := c.transport.BuildURL(c.origin, path)
		resp := c.get(ctx, rawURL)
		if resp == nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			preview := bodyPreview(resp, 500)
			c.add(rawURL, "critical_file_exposed", scanner.SeverityCritical,
				fmt.Sprintf("Critical configuration file exposed: %s", path),
				fmt.Sprintf("Status: %d\nContent-Type: %s\nContent preview: %s",
					resp.StatusCode, resp.Header.Get("Content-Type"), preview),
				fmt.Sprintf("Immediately secure or remove %s from web accessible directory", path))
		}
		drain(resp)
	}
}

func (c *FileCheck) checkCommonFiles(ctx context.Context) {
	for category, paths := range commonFiles {
		for _, path := range paths {
			rawURL := c.transport.BuildURL(c.origin, path)
			resp := c.get(ctx, rawURL)
			if resp == nil {
				continue
			}
			if resp.StatusCode == http.StatusOK && !isBinaryResponse(resp) {
				preview := bodyPreview(resp, 200)
				c.add(rawURL, "vulnerable_file_exposed", fileSeverity(path, category),
					fmt.Sprintf("Potentially sensitive file exposed: %s", path),
					fmt.Sprintf("Category: %s\nStatus: %d\nContent-Type: %s\nPreview: %s",
						category, resp.StatusCode, resp.Header.Get("Content-Type"), preview),
					fileRecommendation(path, category))
			}
			drain(resp)
		}
	}
}

func (c *FileCheck) checkDirectoryListing(ctx context.Context) {
	for _, dir := range listableDirs {
		rawURL := c.transport.BuildURL(c.origin, dir)
		resp := c.get(ctx, rawURL)
		if resp == nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			content := strings.ToLower(bodyPreview(resp, 4096))
			for _, indicator := range listingIndicators {
				if strings.Contains(content, indicator) {
					c.add(rawURL, "directory_listing_enabled", scanner.SeverityMedium,
						fmt.Sprintf("Directory listing enabled: %s", dir),
						fmt.Sprintf("Directory contents visible\nStatus: %d", resp.StatusCode),
						fmt.Sprintf("Disable directory listing in web server configuration or add index file to %s", dir))
					break
				}
			}
		}
		drain(resp)
	}
}

func fileSeverity(path, category string) scanner.Severity {
	switch {
	case category == "backup_files" || category == "config_files":
		return scanner.SeverityHigh
	case category == "admin_panels" || category == "source_code":
		return scanner.SeverityMedium
	default:
		return scanner.SeverityLow
	}
}

func fileRecommendation(path, category string) string {
	switch category {
	case "backup_files":
		return fmt.Sprintf("Remove backup file %s from web directory or restrict access", path)
	case "config_files":
		return fmt.Sprintf("Move configuration file %s outside web root or restrict access", path)
	case "admin_panels":
		return fmt.Sprintf("Secure admin panel at %s with proper authentication and access controls", path)
	case "log_files":
		return fmt.Sprintf("Move log file %s outside web root or restrict access", path)
	case "source_code":
		return fmt.Sprintf("Remove or protect source code repository files/directories at %s", path)
	default:
		return fmt.Sprintf("Review and secure access to %s", path)
	}
}
