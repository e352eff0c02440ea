// Package report renders finished scan runs into the supported output
// formats and persists runs for offline reporting. Renderers read the
// run; they never mutate it.
package report

import (
	"fmt"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Renderer serializes a scan run into one output format.
type Renderer interface {
	Render(run *scanner.ScanRun) ([]byte, error)
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatXML, FormatCSV, FormatPDF}
}

// ForFormat returns the renderer for the named format.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatText, "console":
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatXML:
		return &XMLRenderer{}, nil
	case FormatCSV:
		return &CSVRenderer{}, nil
	case FormatPDF:
		return &PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}
