// Package httputil provides HTTP utilities for fetching background images.
//
// # Overview
//
// This package provides infrastructure used by the remote image providers:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//   - [NewTransport]: An instrumented, retrying http.RoundTripper
//
// # Caching
//
// [Cache] stores fetched responses in the filesystem (~/.cache/menuforge/)
// with configurable TTL. Background images rarely change under a given URL,
// so repeated renders against the same background skip the network entirely.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, _ := cache.Get("bg:"+url, &data)  // Check cache
//	if !ok {
//	    data = fetchFromSource()
//	    cache.Set("bg:"+url, data)        // Store for later
//	}
//
// Cache keys should be namespaced by provider to avoid collisions.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering an image host:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/menuforge/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `menuforge cache clear` or by deleting the
// cache directory.
package httputil
