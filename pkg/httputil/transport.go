package httputil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/menuforge/menuforge/pkg/observability"
)

// Transport is an instrumented http.RoundTripper that retries transient
// failures and reports requests through the [observability] hooks.
//
// Responses with status 429 or 5xx and plain network errors are retried
// with exponential backoff; everything else passes through unchanged.
type Transport struct {
	base     http.RoundTripper
	attempts int
	delay    time.Duration
}

// TransportOption configures a [Transport].
type TransportOption func(*Transport)

// WithBase sets the underlying round tripper. Defaults to
// http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) { t.base = rt }
}

// WithAttempts sets the maximum number of attempts per request.
func WithAttempts(n int) TransportOption {
	return func(t *Transport) { t.attempts = n }
}

// WithDelay sets the initial backoff delay.
func WithDelay(d time.Duration) TransportOption {
	return func(t *Transport) { t.delay = d }
}

// NewTransport creates an instrumented retrying transport with defaults
// matching [RetryWithBackoff]: 3 attempts, 1 second initial delay.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		base:     http.DefaultTransport,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)

	start := time.Now()
	var resp *http.Response
	err := Retry(ctx, t.attempts, t.delay, func() error {
		r, err := t.base.RoundTrip(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			r.Body.Close()
			return &RetryableError{Err: fmt.Errorf("%s %s: status %d", req.Method, req.URL, r.StatusCode)}
		}
		resp = r
		return nil
	})
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, err
	}

	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// NewClient returns an *http.Client backed by an instrumented retrying
// [Transport] with the given request timeout.
func NewClient(timeout time.Duration, opts ...TransportOption) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(opts...),
	}
}
