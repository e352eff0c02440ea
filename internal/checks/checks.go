// Package checks contains the built-in vulnerability checks. Each check
// binds to the shared transport and target origin, accumulates its own
// findings, and swallows individual probe failures: a request that
// cannot be completed simply found nothing.
package checks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/khanhnv2901/webscan/internal/scanner"
)

// Builtin returns the built-in check registrations in their canonical
// execution order.
func Builtin() []scanner.Registration {
	return []scanner.Registration{
		{Name: "security_headers", New: NewHeaderCheck},
		{Name: "server_info", New: NewServerInfoCheck},
		{Name: "exposed_files", New: NewFileCheck},
		{Name: "misc", New: NewMiscCheck},
	}
}

// base carries the state every built-in check shares: the bound
// transport, the target origin, and the private finding accumulator.
type base struct {
	transport *scanner.Transport
	origin    string
	findings  []scanner.Finding
}

func (b *base) add(location, checkName string, severity scanner.Severity, description, evidence, recommendation string) {
	b.findings = append(b.findings, scanner.NewFinding(location, checkName, severity, description, evidence, recommendation))
}

// fetch performs a request and treats any transport failure as "no
// usable response". Callers must close the body of a non-nil response.
func (b *base) fetch(ctx context.Context, method, rawURL string, opts *scanner.RequestOptions) *http.Response {
	resp, err := b.transport.Request(ctx, method, rawURL, opts)
	if err != nil {
		return nil
	}
	return resp
}

func (b *base) get(ctx context.Context, rawURL string) *http.Response {
	return b.fetch(ctx, http.MethodGet, rawURL, nil)
}

// isBinaryResponse reports whether the response advertises a content
// type we should not quote as evidence.
func isBinaryResponse(resp *http.Response) bool {
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return strings.Contains(contentType, "image/") ||
		strings.Contains(contentType, "application/octet-stream")
}

// bodyPreview reads up to limit bytes of the body for use as finding
// evidence. The body is left drained but not closed.
func bodyPreview(resp *http.Response, limit int) string {
	if isBinaryResponse(resp) {
		return "[binary content]"
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)+1))
	if err != nil && len(data) == 0 {
		return ""
	}
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}

// drain discards the rest of the body and closes it so the connection
// can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
