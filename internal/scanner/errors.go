package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// Configuration errors, reported before any network activity starts.
var (
	ErrInvalidOrigin     = errors.New("invalid target origin")
	ErrUnsupportedScheme = errors.New("target scheme must be http or https")
	ErrPrivateOrigin     = errors.New("target resolves to a loopback, link-local or private address")
)

// ErrorKind distinguishes the transport failure classes callers may
// want to report differently.
type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection"
	ErrKindTLS        ErrorKind = "tls"
)

// TransportError is returned by Transport.Request once retries are
// exhausted. Checks treat it as "no usable response" and must not
// propagate it past their own boundary.
type TransportError struct {
	Kind     ErrorKind
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failure requesting %s after %d attempt(s): %v", e.Kind, e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classifyError sorts a failed attempt into the transport error
// taxonomy: timeout, TLS failure, or generic connection failure.
func classifyError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindTimeout
	}

	var (
		certVerifyErr *tls.CertificateVerificationError
		recordErr     tls.RecordHeaderError
		unknownAuth   x509.UnknownAuthorityError
		hostnameErr   x509.HostnameError
		certErr       x509.CertificateInvalidError
	)
	if errors.As(err, &certVerifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &certErr) {
		return ErrKindTLS
	}

	return ErrKindConnection
}
