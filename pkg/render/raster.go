package render

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/menuforge/menuforge/pkg/layout"
)

// defaultPreviewScale keeps previews screen-sized; print canvases run to
// 3000+ pixels a side.
const defaultPreviewScale = 0.25

// PreviewOption configures raster preview rendering.
type PreviewOption func(*previewRenderer)

type previewRenderer struct {
	background []byte
	scale      float64
}

// WithPreviewBackground composites the encoded background image under the
// text. Undecodable data is skipped, leaving a white canvas.
func WithPreviewBackground(data []byte) PreviewOption {
	return func(r *previewRenderer) { r.background = data }
}

// WithPreviewScale sets the output scale relative to the canvas.
func WithPreviewScale(s float64) PreviewOption {
	return func(r *previewRenderer) { r.scale = s }
}

// RenderPreview rasterizes the layout directly in Go and returns PNG bytes.
// Fonts are resolved from the system via findfont; families that cannot be
// found fall back to a builtin bitmap face, so previews always succeed but
// only approximate the brand typography.
func RenderPreview(l layout.TextLayout, opts ...PreviewOption) ([]byte, error) {
	r := previewRenderer{scale: defaultPreviewScale}
	for _, opt := range opts {
		opt(&r)
	}

	w := max(1, int(l.Width*r.scale))
	h := max(1, int(l.Height*r.scale))
	ctx := gg.NewContext(w, h)
	ctx.SetHexColor("#ffffff")
	ctx.Clear()

	if len(r.background) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(r.background)); err == nil {
			ctx.DrawImage(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), 0, 0)
		}
	}

	for _, el := range l.Elements {
		size := el.FontSize * r.scale
		loaded := false
		if path := findFace(el.FontFamily, el.FontWeight); path != "" {
			loaded = ctx.LoadFontFace(path, size) == nil
		}
		if !loaded {
			ctx.SetFontFace(basicfont.Face7x13)
		}

		ctx.SetHexColor(el.Color)
		x := el.X * r.scale
		y := el.Y * r.scale
		switch el.Anchor {
		case layout.AnchorMiddle:
			tw, _ := ctx.MeasureString(el.Text)
			x -= tw / 2
		case layout.AnchorEnd:
			tw, _ := ctx.MeasureString(el.Text)
			x -= tw
		}
		ctx.DrawString(el.Text, x, y)
	}

	var buf bytes.Buffer
	if err := ctx.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// findFace locates a system font file for the family, preferring a bold
// variant when the weight asks for one. Returns "" when nothing matches.
func findFace(family, weight string) string {
	base := strings.ToLower(strings.ReplaceAll(family, " ", ""))
	candidates := []string{base + ".ttf"}
	if weight == "bold" {
		candidates = []string{base + "-bold.ttf", base + "bold.ttf", base + ".ttf"}
	}
	for _, name := range candidates {
		if path, err := findfont.Find(name); err == nil {
			return path
		}
	}
	return ""
}
