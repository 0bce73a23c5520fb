package render

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/menuforge/menuforge/pkg/layout"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background []byte
	mime       string
}

// WithBackground embeds the encoded background image under the text as a
// base64 data URI, scaled to fill the canvas. The mime type must match the
// encoding (image/png, image/jpeg, ...).
func WithBackground(data []byte, mime string) SVGOption {
	return func(r *svgRenderer) { r.background = data; r.mime = mime }
}

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l layout.TextLayout, opts ...SVGOption) []byte {
	r := svgRenderer{mime: "image/png"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)

	if len(r.background) > 0 {
		fmt.Fprintf(&buf, `  <image href="data:%s;base64,%s" x="0" y="0" width="%.1f" height="%.1f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			r.mime, base64.StdEncoding.EncodeToString(r.background), l.Width, l.Height)
	}

	for _, el := range l.Elements {
		fmt.Fprintf(&buf,
			`  <text x="%.1f" y="%.1f" font-family=%s font-size="%.1f" font-weight="%s" fill="%s" text-anchor="%s">%s</text>`+"\n",
			el.X, el.Y, escapeAttr(el.FontFamily), el.FontSize, el.FontWeight, el.Color, el.Anchor, escapeText(el.Text))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return `"` + buf.String() + `"`
}
