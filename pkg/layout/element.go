package layout

import "encoding/json"

// Anchor controls how a text element is aligned around its X coordinate.
// Values follow SVG text-anchor semantics; the slide exporter maps them to
// left/center/right paragraph alignment.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// TextElement is one positioned run of text in final-canvas pixel space.
// Y is a baseline reference in a top-left-origin coordinate system. The
// JSON field names are a frozen contract with the slide-deck exporter.
type TextElement struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight string  `json:"fontWeight"`
	Color      string  `json:"color"`
	Anchor     Anchor  `json:"anchor"`
	MaxWidth   float64 `json:"maxWidth,omitempty"`
}

// TextLayout is the ordered result of a layout computation. Element order
// is top-to-bottom reading order; renderers may draw independently but the
// order is stable for reproducibility.
type TextLayout struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Elements []TextElement `json:"elements"`
}

// MarshalIndent serializes the layout for the cross-process slide-deck
// hand-off.
func (l TextLayout) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}
