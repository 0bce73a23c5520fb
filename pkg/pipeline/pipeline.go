// Package pipeline provides the core generation pipeline for Menuforge.
//
// This package implements the complete detect → layout → render pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Detect: Measure the background's clear zone (the quiet region that
//     can host overlay text)
//  2. Layout: Compute positioned text elements for the menu content
//  3. Render: Generate output in various formats (SVG, JSON, PDF, PNG)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage caches by a content hash of its inputs.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	opts := pipeline.Options{
//	    Background: "backgrounds/tavern.png",
//	    Content:    "menus/dinner.toml",
//	    Format:     "flyer",
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Detect only
//	zone, detected, err := runner.Detect(ctx, imageBytes)
//
//	// Layout with existing zone
//	l, err := runner.ComputeLayout(ctx, content, brand, &zone, opts)
//
//	// Render with existing layout
//	artifacts, err := runner.Render(ctx, l, imageBytes, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menuforge/menuforge/pkg/cache"
	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/layout"
	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/vision"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatJSON    = "json"
	FormatPDF     = "pdf"
	FormatPNG     = "png"
	FormatPreview = "preview"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatJSON:    true,
	FormatPDF:     true,
	FormatPNG:     true,
	FormatPreview: true,
}

// DefaultPNGScale is the default raster scale for PNG output. The canvas is
// already at print resolution, so 1x is the right default.
const DefaultPNGScale = 1.0

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	Background string `json:"background,omitempty"` // local path or http(s) URL
	Content    string `json:"content,omitempty"`    // menu content TOML path
	Brand      string `json:"brand,omitempty"`      // brand TOML path (optional)

	// Layout options
	Format      string            `json:"format,omitempty"` // format preset name
	Zone        *vision.ClearZone `json:"zone,omitempty"`   // explicit zone, skips detection
	NoZone      bool              `json:"no_zone,omitempty"`
	AccentColor string            `json:"accent_color,omitempty"`
	HeadingFont string            `json:"heading_font,omitempty"`
	BodyFont    string            `json:"body_font,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG scale factor

	// Refresh bypasses all caches.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Zone is the measured (or supplied) clear zone, nil when NoZone.
	Zone *vision.ClearZone

	// ZoneDetected reports whether detection found a real quiet run, as
	// opposed to applying the fractional fallback or an explicit override.
	ZoneDetected bool

	// ImageHash is the content hash of the background image bytes.
	ImageHash string

	// Layout contains the positioned text elements.
	Layout layout.TextLayout

	// LayoutHash is the content hash of the serialized layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// RecordID is the stored generation record, when a store is configured.
	RecordID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ImageWidth   int
	ImageHeight  int
	ElementCount int
	DetectTime   time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ZoneHit   bool // Whether the zone came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid output format: %q (must be one of: svg, json, pdf, png, preview)", format)
	}
	return nil
}

// ValidateFormats checks that all output formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Content == "" {
		return errors.New(errors.ErrCodeInvalidInput, "content is required")
	}
	if o.Background == "" && !o.NoZone {
		return errors.New(errors.ErrCodeInvalidInput, "background is required unless no_zone is set")
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if _, err := menu.FormatByName(o.Format); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.AccentColor != "" {
		if err := errors.ValidateHexColor(o.AccentColor); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Format == "" {
		o.Format = menu.DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// IsRemoteBackground reports whether the background is fetched over HTTP.
func (o *Options) IsRemoteBackground() bool {
	return strings.HasPrefix(o.Background, "http://") || strings.HasPrefix(o.Background, "https://")
}

// LayoutOptions converts the overrides into layout engine options.
func (o *Options) LayoutOptions() []layout.Option {
	var opts []layout.Option
	if o.AccentColor != "" {
		opts = append(opts, layout.WithAccentColor(o.AccentColor))
	}
	if o.HeadingFont != "" {
		opts = append(opts, layout.WithHeadingFont(o.HeadingFont))
	}
	if o.BodyFont != "" {
		opts = append(opts, layout.WithBodyFont(o.BodyFont))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Format:      o.Format,
		NoZone:      o.NoZone,
		AccentColor: o.AccentColor,
		HeadingFont: o.HeadingFont,
		BodyFont:    o.BodyFont,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
