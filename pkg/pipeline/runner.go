package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menuforge/menuforge/pkg/cache"
	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/layout"
	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/observability"
	"github.com/menuforge/menuforge/pkg/provider"
	"github.com/menuforge/menuforge/pkg/render"
	"github.com/menuforge/menuforge/pkg/store"
	"github.com/menuforge/menuforge/pkg/vision"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store, and logger - it
// doesn't hold pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and record store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If st is nil, no generation records are written.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

// zoneEntry is the cached detection result. The detected flag rides along
// so cache hits report fallback status identically to fresh runs.
type zoneEntry struct {
	Zone     vision.ClearZone `json:"zone"`
	Detected bool             `json:"detected"`
}

// Execute runs the complete detect → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	content, err := menu.LoadContent(opts.Content)
	if err != nil {
		return nil, err
	}
	brand := menu.DefaultBrand()
	if opts.Brand != "" {
		if brand, err = menu.LoadBrand(opts.Brand); err != nil {
			return nil, err
		}
	}
	format, err := menu.FormatByName(opts.Format)
	if err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	var background []byte
	if opts.Background != "" {
		background, err = r.FetchBackground(ctx, opts)
		if err != nil {
			return nil, err
		}
		result.ImageHash = cache.Hash(background)
	}

	// Stage 1: Detect
	var zone *vision.ClearZone
	switch {
	case opts.NoZone:
	case opts.Zone != nil:
		zone = opts.Zone
		result.ZoneDetected = false
	default:
		detectStart := time.Now()
		z, detected, hit, err := r.DetectWithCacheInfo(ctx, background, opts.Refresh)
		if err != nil {
			return nil, err
		}
		zone = &z
		result.ZoneDetected = detected
		result.CacheInfo.ZoneHit = hit
		result.Stats.DetectTime = time.Since(detectStart)

		r.Logger.Info("measured clear zone",
			"top", z.Top, "bottom", z.Bottom, "left", z.Left, "right", z.Right,
			"detected", detected,
			"duration", result.Stats.DetectTime)
	}
	result.Zone = zone

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, content, brand, format, zone, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.ElementCount = len(l.Elements)
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := l.MarshalIndent(); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"format", opts.Format,
		"elements", len(l.Elements),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, background, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	if r.Store != nil {
		formats := make([]string, 0, len(artifacts))
		for f := range artifacts {
			formats = append(formats, f)
		}
		rec := store.NewRecord(content.Title, opts.Format, result.ImageHash, result.LayoutHash, formats)
		if err := r.Store.Put(ctx, rec); err != nil {
			r.Logger.Warn("failed to store generation record", "err", err)
		} else {
			result.RecordID = rec.ID
		}
	}

	return result, nil
}

// FetchBackground resolves the background option to image bytes, using a
// file or HTTP provider depending on the reference.
func (r *Runner) FetchBackground(ctx context.Context, opts Options) ([]byte, error) {
	if opts.IsRemoteBackground() {
		p, err := provider.NewHTTPProvider(opts.Background)
		if err != nil {
			return nil, err
		}
		f, _ := menu.FormatByName(opts.Format)
		return p.Generate(ctx, "", int(f.CanvasWidth()), int(f.CanvasHeight()))
	}
	p, err := provider.NewFileProvider(opts.Background)
	if err != nil {
		return nil, err
	}
	return p.Generate(ctx, "", 0, 0)
}

// DetectWithCacheInfo measures the clear zone with caching and returns the
// zone, whether a quiet run was actually found, and cache hit info.
func (r *Runner) DetectWithCacheInfo(ctx context.Context, image []byte, refresh bool) (vision.ClearZone, bool, bool, error) {
	if len(image) == 0 {
		return vision.ClearZone{}, false, false, errors.New(errors.ErrCodeInvalidImage, "empty background image")
	}
	key := r.Keyer.ZoneKey(cache.Hash(image))

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var entry zoneEntry
			if json.Unmarshal(data, &entry) == nil {
				observability.Cache().OnCacheHit(ctx, "zone")
				return entry.Zone, entry.Detected, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "zone")
	}

	buf, err := vision.Decode(bytes.NewReader(image))
	if err != nil {
		return vision.ClearZone{}, false, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnDetectStart(ctx, buf.Width, buf.Height)
	start := time.Now()
	zone, detected := vision.MeasureClearZoneInfo(buf)
	hooks.OnDetectComplete(ctx, buf.Width, buf.Height, !detected, time.Since(start))

	if data, err := json.Marshal(zoneEntry{Zone: zone, Detected: detected}); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLZone)
		observability.Cache().OnCacheSet(ctx, "zone", len(data))
	}
	return zone, detected, false, nil
}

// Detect is a convenience wrapper that discards the cache hit info.
func (r *Runner) Detect(ctx context.Context, image []byte) (vision.ClearZone, bool, error) {
	zone, detected, _, err := r.DetectWithCacheInfo(ctx, image, false)
	return zone, detected, err
}

// ComputeLayoutWithCacheInfo computes the text layout with caching and
// returns cache hit info. The cache key covers the content, brand, zone,
// and every layout option.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, content *menu.Content, brand menu.Brand, format menu.Format, zone *vision.ClearZone, opts Options) (layout.TextLayout, bool, error) {
	if err := content.Validate(); err != nil {
		return layout.TextLayout{}, false, err
	}
	if err := brand.Validate(); err != nil {
		return layout.TextLayout{}, false, err
	}

	inputs, _ := json.Marshal(struct {
		Content *menu.Content     `json:"content"`
		Brand   menu.Brand        `json:"brand"`
		Zone    *vision.ClearZone `json:"zone,omitempty"`
	}{content, brand, zone})
	key := r.Keyer.LayoutKey(cache.Hash(inputs), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.TextLayout
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Format, content.ItemCount())
	start := time.Now()
	l := layout.Compute(content, brand, format, zone, opts.LayoutOptions()...)
	hooks.OnLayoutComplete(ctx, opts.Format, len(l.Elements), time.Since(start))

	r.logOverflow(l)

	if data, err := l.MarshalIndent(); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, content *menu.Content, brand menu.Brand, format menu.Format, zone *vision.ClearZone, opts Options) (layout.TextLayout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, content, brand, format, zone, opts)
	return l, err
}

// logOverflow reports elements whose baseline lands past the canvas. The
// engine clamps type at per-role floors, so extreme content can still run
// long; clipped output is better than an error here.
func (r *Runner) logOverflow(l layout.TextLayout) {
	for _, el := range l.Elements {
		if el.Y > l.Height {
			r.Logger.Debug("layout overflows canvas at floor sizes",
				"text", el.Text, "y", el.Y, "height", l.Height)
			return
		}
	}
}

// RenderWithCacheInfo renders artifacts with per-format caching and returns
// cache hit info. The background is embedded in svg/pdf/png/preview output,
// so it participates in the cache key.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.TextLayout, background []byte, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := l.MarshalIndent()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	keyHash := cache.Hash(append(layoutData, background...))

	artifacts := make(map[string][]byte)
	allCached := true
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.renderFormats(l, background, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.TextLayout, background []byte, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, background, opts)
	return artifacts, err
}

// renderFormats produces every requested format from one SVG base.
func (r *Runner) renderFormats(l layout.TextLayout, background []byte, opts Options) (map[string][]byte, error) {
	var svgOpts []render.SVGOption
	if len(background) > 0 {
		svgOpts = append(svgOpts, render.WithBackground(background, sniffMime(background)))
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = render.RenderSVG(l, svgOpts...)
		case FormatJSON:
			data, err := render.RenderJSON(l)
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatPDF:
			data, err := render.RenderPDF(l, render.WithPDFSVGOptions(svgOpts...))
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(l, render.WithPNGSVGOptions(svgOpts...), render.WithScale(opts.Scale))
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatPreview:
			data, err := render.RenderPreview(l, render.WithPreviewBackground(background))
			if err != nil {
				return nil, err
			}
			out[format] = data
		}
	}
	return out, nil
}

// sniffMime detects the media type of encoded image bytes.
func sniffMime(data []byte) string {
	return http.DetectContentType(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
