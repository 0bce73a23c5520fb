package render

import "github.com/menuforge/menuforge/pkg/layout"

// RenderJSON exports the layout as a pretty-printed JSON document. This is
// the data interchange format for the slide-deck exporter, enabling:
//
//   - Cross-process hand-off to the PPTX generator
//   - Caching computed layouts for fast re-rendering
//   - Round-trip rendering (re-import and render identically)
//
// Field names are a frozen contract: width, height, and elements carrying
// text, x, y (baseline), fontSize, fontFamily, fontWeight, color, anchor,
// and maxWidth.
func RenderJSON(l layout.TextLayout) ([]byte, error) {
	return l.MarshalIndent()
}
