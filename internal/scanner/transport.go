package scanner

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgents is the built-in identity pool used when the
// configuration does not supply one.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
}

const defaultTimeout = 30 * time.Second

// TransportConfig holds the knobs for the shared HTTP transport.
type TransportConfig struct {
	// Timeout bounds each individual request attempt.
	Timeout time.Duration
	// Delay is a fixed floor applied before every call, even when no
	// retry occurs.
	Delay time.Duration
	// MaxRetries is the number of additional attempts after the first
	// one fails at the transport level. Must be >= 0.
	MaxRetries int
	// RequestsPerSecond caps the global request rate across all
	// workers. 0 means unlimited.
	RequestsPerSecond float64
	// UserAgents is the identity pool; DefaultUserAgents is used when
	// empty.
	UserAgents []string
	// RotateEvery resamples the active User-Agent after this many
	// requests, cumulative across all workers. 0 disables rotation.
	RotateEvery int
	// Headers are extra headers applied to every request.
	Headers map[string]string
	// Proxy is an optional proxy endpoint URL.
	Proxy string
	// VerifyTLS controls certificate verification.
	VerifyTLS bool
}

// RequestOptions customizes a single transport call.
type RequestOptions struct {
	// Body is sent as the request body; kept as bytes so retries can
	// replay it.
	Body []byte
	// Headers are merged over the transport-level headers for this
	// call only.
	Headers map[string]string
	// NoFollowRedirects returns the first response instead of chasing
	// Location headers.
	NoFollowRedirects bool
}

// Transport is the HTTP layer every check shares: one connection pool,
// one global rate limiter, one rotating identity, retry with
// exponential backoff on transport-level failures. HTTP error statuses
// are not failures; they come back as ordinary responses.
type Transport struct {
	cfg     TransportConfig
	client  *http.Client
	noRedir *http.Client
	limiter *rate.Limiter

	// backoff is the base unit for the 1, 2, 4, ... retry delays.
	backoff time.Duration

	mu        sync.Mutex
	requests  int64
	userAgent string
}

// NewTransport validates cfg and builds the shared transport. poolSize
// sizes the idle connection pool; pass the scan's worker count.
func NewTransport(cfg TransportConfig, poolSize int) (*Transport, error) {
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0, got %d", cfg.MaxRetries)
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests per second must be >= 0, got %g", cfg.RequestsPerSecond)
	}
	if cfg.RotateEvery < 0 {
		return nil, fmt.Errorf("rotate-every must be >= 0, got %d", cfg.RotateEvery)
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultUserAgents
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if poolSize < 1 {
		poolSize = 1
	}

	httpTransport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS},
		DialContext: (&net.Dialer{
			Timeout: cfg.Timeout,
		}).DialContext,
		MaxIdleConns:        poolSize,
		MaxIdleConnsPerHost: poolSize,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		httpTransport.Proxy = http.ProxyURL(proxyURL)
	}

	t := &Transport{
		cfg: cfg,
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   cfg.Timeout,
		},
		noRedir: &http.Client{
			Transport: httpTransport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		backoff:   time.Second,
		userAgent: cfg.UserAgents[rand.Intn(len(cfg.UserAgents))],
	}
	if cfg.RequestsPerSecond > 0 {
		// Burst of one enforces the full 1/R gap between any two
		// granted requests, regardless of which worker asks.
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return t, nil
}

// Request performs one rate-limited, retried HTTP call. The returned
// response's body must be closed by the caller. After retries exhaust
// it returns a *TransportError; HTTP error statuses are returned as
// ordinary responses.
func (t *Transport) Request(ctx context.Context, method, rawURL string, opts *RequestOptions) (*http.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	if t.cfg.Delay > 0 {
		if err := sleepCtx(ctx, t.cfg.Delay); err != nil {
			return nil, err
		}
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	userAgent := t.nextIdentity()

	client := t.client
	if opts.NoFollowRedirects {
		client = t.noRedir
	}

	var lastErr error
	for attempt := 0; attempt <= t.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Back off 1, 2, 4, ... units before retry k.
			if err := sleepCtx(ctx, t.backoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		req, err := t.newRequest(ctx, method, rawURL, userAgent, opts)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, &TransportError{
		Kind:     classifyError(lastErr),
		URL:      rawURL,
		Attempts: t.cfg.MaxRetries + 1,
		Err:      lastErr,
	}
}

// Get performs a GET request.
func (t *Transport) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	return t.Request(ctx, http.MethodGet, rawURL, nil)
}

// Head performs a HEAD request.
func (t *Transport) Head(ctx context.Context, rawURL string) (*http.Response, error) {
	return t.Request(ctx, http.MethodHead, rawURL, nil)
}

// PostForm performs a POST request with a form-encoded body.
func (t *Transport) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	return t.Request(ctx, http.MethodPost, rawURL, &RequestOptions{
		Body: []byte(form.Encode()),
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	})
}

// BuildURL joins a probe path with the target origin. Absolute paths
// are re-anchored to the origin's scheme and host; relative paths are
// joined against the origin with a trailing slash.
func (t *Transport) BuildURL(origin, path string) string {
	parsed, err := url.Parse(origin)
	if err != nil {
		return origin + path
	}
	if strings.HasPrefix(path, "/") {
		return parsed.Scheme + "://" + parsed.Host + path
	}
	base, err := url.Parse(strings.TrimRight(origin, "/") + "/")
	if err != nil {
		return origin + "/" + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return origin + "/" + path
	}
	return base.ResolveReference(ref).String()
}

// RequestCount returns how many calls the transport has served,
// cumulative across all workers. Retries of one call count once.
func (t *Transport) RequestCount() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests
}

// UserAgent returns the currently active identity.
func (t *Transport) UserAgent() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userAgent
}

// nextIdentity bumps the shared request counter and, every RotateEvery
// requests, resamples the active User-Agent for this and all subsequent
// calls.
func (t *Transport) nextIdentity() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	if t.cfg.RotateEvery > 0 && t.requests%int64(t.cfg.RotateEvery) == 0 {
		t.userAgent = t.cfg.UserAgents[rand.Intn(len(t.cfg.UserAgents))]
	}
	return t.userAgent
}

func (t *Transport) newRequest(ctx context.Context, method, rawURL, userAgent string, opts *RequestOptions) (*http.Request, error) {
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request for %s: %w", method, rawURL, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range t.cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
