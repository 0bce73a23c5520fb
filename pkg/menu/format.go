package menu

import (
	"sort"

	"github.com/menuforge/menuforge/pkg/errors"
)

// Format describes the target canvas geometry for one output kind.
// Width and Height are the trim size in pixels at DPI; Bleed is the extra
// printed border that gets cut away; SafeMargin is the inset within trim
// where content must stay. The compositing canvas spans trim plus bleed on
// all sides.
type Format struct {
	Name       string  `json:"name"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	DPI        float64 `json:"dpi"`
	Bleed      float64 `json:"bleed"`
	SafeMargin float64 `json:"safeMargin"`
}

// CanvasWidth returns the final compositing width (trim + bleed both sides).
func (f Format) CanvasWidth() float64 { return f.Width + 2*f.Bleed }

// CanvasHeight returns the final compositing height.
func (f Format) CanvasHeight() float64 { return f.Height + 2*f.Bleed }

// PxPerPt converts typographic points to pixels at the format's DPI.
func (f Format) PxPerPt() float64 { return f.DPI / 72 }

// Built-in format presets.
var formats = map[string]Format{
	"flyer": {
		Name:       "flyer",
		Width:      1650, // 5.5in x 8.5in at 300 DPI
		Height:     2550,
		DPI:        300,
		Bleed:      38, // 0.125in
		SafeMargin: 100,
	},
	"tabloid": {
		Name:       "tabloid",
		Width:      3300, // 11in x 17in at 300 DPI
		Height:     5100,
		DPI:        300,
		Bleed:      75, // 0.25in
		SafeMargin: 200,
	},
	"slide": {
		Name:       "slide",
		Width:      1920,
		Height:     1080,
		DPI:        96,
		Bleed:      0,
		SafeMargin: 60,
	},
}

// DefaultFormat is the preset used when none is requested.
const DefaultFormat = "flyer"

// FormatByName looks up a format preset.
func FormatByName(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return Format{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %q (available: %v)", name, FormatNames())
	}
	return f, nil
}

// FormatNames returns the available preset names in stable order.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
