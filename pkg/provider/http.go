package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/httputil"
)

// maxImageBytes caps a fetched background. Print-resolution PNGs run a few
// megabytes; anything past this is a misbehaving endpoint.
const maxImageBytes = 64 << 20

// HTTPProvider fetches backgrounds from an image service. The prompt and
// dimensions are passed as query parameters (query, w, h), which matches
// stock-photo endpoints and the generation service alike.
//
// Fetched bytes are cached read-through by full request URL, so repeated
// renders against the same prompt and size skip the network.
type HTTPProvider struct {
	base  string
	http  *http.Client
	cache *httputil.Cache
}

// HTTPOption configures an [HTTPProvider].
type HTTPOption func(*HTTPProvider)

// WithHTTPClient replaces the default retrying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.http = c }
}

// WithCache enables read-through caching of fetched images.
func WithCache(c *httputil.Cache) HTTPOption {
	return func(p *HTTPProvider) { p.cache = c }
}

// NewHTTPProvider creates a provider fetching from the service at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) (*HTTPProvider, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	p := &HTTPProvider{
		base: baseURL,
		http: httputil.NewClient(60 * time.Second),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Generate fetches an image for the prompt at the given dimensions.
func (p *HTTPProvider) Generate(ctx context.Context, prompt string, width, height int) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?query=%s&w=%d&h=%d", p.base, url.QueryEscape(prompt), width, height)

	// Image bytes round-trip the JSON cache as base64.
	if p.cache != nil {
		var encoded string
		if ok, _ := p.cache.Get(reqURL, &encoded); ok {
			if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
				return data, nil
			}
		}
	}

	data, err := p.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.Set(reqURL, base64.StdEncoding.EncodeToString(data))
	}
	return data, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "building image request")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetching background image")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "no image for prompt")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrCodeRateLimited, "image service rate limited")
	default:
		return nil, errors.New(errors.ErrCodeNetwork, "image service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "reading image response")
	}
	if len(data) > maxImageBytes {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}
