// Package cache provides caching for expensive pipeline stages.
//
// Clear-zone detection, layout computation, and rendered artifacts are all
// deterministic functions of their inputs, so each stage caches by a content
// hash: zones by the background image hash, layouts by the content and
// format, artifacts by the layout. Backends:
//
//   - [FileCache]: directory-backed, used by the CLI
//   - [RedisCache]: shared cache for the HTTP API
//   - [NullCache]: disables caching
//
// Keys are generated by a [Keyer]; [ScopedKeyer] adds a prefix for
// multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Stage TTLs. Zones and layouts are pure functions of their inputs and keep
// long; artifacts are large, so they expire sooner to bound disk usage.
const (
	TTLZone     = 30 * 24 * time.Hour
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts captures every input that changes a computed layout.
type LayoutKeyOpts struct {
	Format      string `json:"format"`
	NoZone      bool   `json:"no_zone,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
	HeadingFont string `json:"heading_font,omitempty"`
	BodyFont    string `json:"body_font,omitempty"`
}

// ArtifactKeyOpts captures every input that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"` // output format: svg, json, pdf, png
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// ZoneKey generates a key for a measured clear zone, from the hash of
	// the decoded background image.
	ZoneKey(imageHash string) string

	// LayoutKey generates a key for a computed layout, from the hash of the
	// content tree and the layout options.
	LayoutKey(contentHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, from the hash of
	// the layout and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// HTTPKey generates a key for a cached HTTP response body.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ZoneKey generates a key for clear-zone caching.
func (k *DefaultKeyer) ZoneKey(imageHash string) string {
	return "zone:" + imageHash
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(contentHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", contentHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
