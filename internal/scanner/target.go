package scanner

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateOrigin parses and vets a target origin. The origin must be an
// absolute http or https URL and, unless allowPrivate is set, its host
// must not resolve into loopback, link-local or RFC1918-private address
// space. Validation happens once, before any transport is built; it is
// not re-checked per request.
func ValidateOrigin(ctx context.Context, rawURL string, allowPrivate bool) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidOrigin, rawURL, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidOrigin, rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: got %q", ErrUnsupportedScheme, parsed.Scheme)
	}

	if !allowPrivate {
		addrs, err := resolveHost(ctx, parsed.Hostname())
		if err != nil {
			return "", fmt.Errorf("%w: cannot resolve host %q: %v", ErrInvalidOrigin, parsed.Hostname(), err)
		}
		for _, ip := range addrs {
			if isDisallowedIP(ip) {
				return "", fmt.Errorf("%w: %s", ErrPrivateOrigin, ip)
			}
		}
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}

func resolveHost(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

func isDisallowedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsPrivate()
}
