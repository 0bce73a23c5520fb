// Package render turns computed text layouts into deliverable artifacts.
//
// # Overview
//
// A sink transforms a [layout.TextLayout] into a final output format:
//
//   - SVG: text overlay, optionally composited over the background image
//   - JSON: the layout contract consumed by the slide-deck exporter
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//   - Preview: pure-Go raster preview, no external tools needed
//
// # SVG Output
//
// [RenderSVG] produces the canonical artifact. Each text element becomes a
// <text> node positioned in canvas pixel space; the background image, when
// supplied, is embedded as a base64 data URI so the SVG is self-contained:
//
//	svg := render.RenderSVG(l,
//	    render.WithBackground(imgBytes, "image/png"),
//	)
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render via SVG, then convert with [ToPDF] and
// [ToPNG]. These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// # Preview Output
//
// [RenderPreview] rasterizes the layout directly in Go. Font metrics are
// approximate (system font lookup, not the brand families), so previews are
// for quick visual checks, not production output.
//
// [layout.TextLayout]: github.com/menuforge/menuforge/pkg/layout.TextLayout
package render
