package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/text"
	"github.com/menuforge/menuforge/pkg/vision"
)

// Layout tuning constants. Point values convert to pixels at the format's
// DPI, so the same proportions hold across print and screen formats.
const (
	// nominalWidthFraction is the content column width, as a fraction of
	// canvas width, below which width pressure starts shrinking type.
	nominalWidthFraction = 0.70

	// titleZoneFraction positions the title when no clear zone is supplied.
	titleZoneFraction = 0.30

	// maxPasses bounds the overflow retry loop.
	maxPasses = 3

	columnPaddingPt  = 12 // horizontal inset from the clear zone edges
	titlePaddingPt   = 24 // extra top inset to clear AI-rendered logo bleed
	titleGapPt       = 16 // gap between the title block and the first section
	headerGapPt      = 6  // gap below a section header
	itemGapPt        = 6  // gap between items
	sectionGapPt     = 12 // gap between sections
	footerGapPt      = 8  // gap between the body region and the footer region
	headingLeading   = 1.4
	lineLeading      = 1.5
	descLeading      = 1.35
	priceColumnShare = 0.25 // fraction of the column reserved for prices
)

// role holds the base point size and the floor it never shrinks below.
type role struct {
	base  float64
	floor float64
}

// Base sizes per text role, with floors at roughly 60-70% of base.
var (
	roleTitle    = role{base: 26, floor: 17}
	roleSubtitle = role{base: 13, floor: 9}
	roleHeader   = role{base: 15, floor: 10}
	roleName     = role{base: 11, floor: 7.5}
	roleDesc     = role{base: 9, floor: 6}
	roleFooter   = role{base: 8, floor: 5.5}
)

// Option overrides brand defaults for a single computation.
type Option func(*engine)

// WithAccentColor replaces the brand accent color.
func WithAccentColor(c string) Option { return func(e *engine) { e.accent = c } }

// WithHeadingFont replaces the brand heading font family.
func WithHeadingFont(f string) Option { return func(e *engine) { e.headingFont = f } }

// WithBodyFont replaces the brand body font family.
func WithBodyFont(f string) Option { return func(e *engine) { e.bodyFont = f } }

// engine carries the resolved inputs of one computation.
type engine struct {
	content *menu.Content
	format  menu.Format

	headingFont string
	bodyFont    string
	accent      string
	dark        string
	descColor   string

	// column geometry in canvas pixels
	left, right float64
	titleTop    float64
	bodyBottom  float64
	footerTop   float64

	narrow bool
	pp     float64 // pixels per point
}

// Compute lays out menu content on the format's canvas. A non-nil zone
// constrains the content column to the background's quiet region; without
// one the safe-margin fallback applies. The result is deterministic for
// identical inputs.
func Compute(content *menu.Content, brand menu.Brand, format menu.Format, zone *vision.ClearZone, opts ...Option) TextLayout {
	e := &engine{
		content:     content,
		format:      format,
		headingFont: brand.HeadingFont,
		bodyFont:    brand.BodyFont,
		accent:      brand.AccentColor,
		dark:        brand.DarkColor,
		descColor:   brand.DescriptionColor,
		pp:          format.PxPerPt(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolveBounds(zone)

	scale := math.Min(e.widthScale(), e.heightScale())
	e.narrow = e.widthScale() < 1

	elems, cursor := e.pass(scale)
	for attempt := 1; attempt < maxPasses && cursor > e.bodyBottom && e.bodyBottom > 0; attempt++ {
		scale *= e.bodyBottom / cursor
		elems, cursor = e.pass(scale)
	}

	return TextLayout{
		Width:    format.CanvasWidth(),
		Height:   format.CanvasHeight(),
		Elements: elems,
	}
}

// resolveBounds derives the content column and vertical regions from the
// clear zone, or from the safe margin when no zone is supplied.
func (e *engine) resolveBounds(zone *vision.ClearZone) {
	f := e.format
	if zone != nil {
		pad := columnPaddingPt * e.pp
		e.left = float64(zone.Left) + pad
		e.right = float64(zone.Right) - pad
		e.titleTop = float64(zone.Top) + titlePaddingPt*e.pp
		e.footerTop = float64(zone.Bottom) - e.footerReserve()
	} else {
		e.left = f.Bleed + f.SafeMargin
		e.right = f.CanvasWidth() - f.Bleed - f.SafeMargin
		e.titleTop = f.Bleed + titleZoneFraction*f.Height
		e.footerTop = f.CanvasHeight() - f.Bleed - f.SafeMargin - e.footerReserve()
	}

	// Degenerate-narrow zones still get a sliver of column to lay out in.
	if e.right-e.left < 1 {
		e.right = e.left + 1
	}
	e.bodyBottom = e.footerTop - footerGapPt*e.pp
}

// footerReserve is the bottom slice held back for the footer, roughly two
// footer line heights.
func (e *engine) footerReserve() float64 {
	return 2 * roleFooter.base * e.pp * headingLeading
}

func (e *engine) contentWidth() float64 { return e.right - e.left }
func (e *engine) centerX() float64      { return (e.left + e.right) / 2 }

// widthScale shrinks type when the column is narrower than the nominal
// fraction of canvas width. Square root rather than linear: narrow columns
// mainly need fewer wraps, not proportionally smaller type.
func (e *engine) widthScale() float64 {
	nominal := nominalWidthFraction * e.format.CanvasWidth()
	if w := e.contentWidth(); w < nominal {
		return math.Sqrt(w / nominal)
	}
	return 1
}

// heightScale shrinks type when the estimated stack of elements at base
// sizes exceeds the body region.
func (e *engine) heightScale() float64 {
	available := e.bodyBottom - e.titleTop
	if available <= 0 {
		return 0
	}
	if needed := e.estimateHeight(); needed > available {
		return available / needed
	}
	return 1
}

// estimateHeight approximates the vertical space the content needs at
// unscaled sizes: title block, per-section headers, per-item lines, and
// extra height for items carrying descriptions.
func (e *engine) estimateHeight() float64 {
	c := e.content
	h := roleTitle.base * e.pp * headingLeading
	if c.Subtitle != "" {
		h += roleSubtitle.base * e.pp * headingLeading
	}
	h += titleGapPt * e.pp

	for _, s := range c.Sections {
		if !e.suppressHeader() {
			h += roleHeader.base*e.pp*lineLeading + headerGapPt*e.pp
		}
		h += float64(len(s.Items)) * (roleName.base*e.pp*lineLeading + itemGapPt*e.pp)
		h += sectionGapPt * e.pp
	}
	h += float64(c.DescriptionCount()) * roleDesc.base * e.pp * descLeading
	return h
}

// suppressHeader reports whether the sole section's header would merely
// repeat the menu title.
func (e *engine) suppressHeader() bool {
	return len(e.content.Sections) == 1 &&
		strings.EqualFold(e.content.Sections[0].Title, e.content.Title)
}

// size converts a role to canvas pixels at the given scale, clamped to the
// role's floor.
func (e *engine) size(r role, scale float64) float64 {
	return math.Max(r.floor, r.base*scale) * e.pp
}

// pass performs one full layout walk at the given scale. It returns the
// elements in reading order and the final vertical cursor, which the
// caller compares against the body region to decide on a retry.
func (e *engine) pass(scale float64) ([]TextElement, float64) {
	var elems []TextElement
	c := e.content
	width := e.contentWidth()
	y := e.titleTop

	titleSize := e.size(roleTitle, scale)
	for _, line := range text.WrapText(c.Title, titleSize, width) {
		y += titleSize * headingLeading
		elems = append(elems, TextElement{
			Text: line, X: e.centerX(), Y: y,
			FontSize: titleSize, FontFamily: e.headingFont, FontWeight: "bold",
			Color: e.dark, Anchor: AnchorMiddle, MaxWidth: width,
		})
	}

	if c.Subtitle != "" {
		subSize := e.size(roleSubtitle, scale)
		for _, line := range text.WrapText(c.Subtitle, subSize, width) {
			y += subSize * headingLeading
			elems = append(elems, TextElement{
				Text: line, X: e.centerX(), Y: y,
				FontSize: subSize, FontFamily: e.bodyFont, FontWeight: "normal",
				Color: e.accent, Anchor: AnchorMiddle, MaxWidth: width,
			})
		}
	}
	y += titleGapPt * e.pp

	for _, s := range c.Sections {
		if !e.suppressHeader() {
			headerSize := e.size(roleHeader, scale)
			y += headerSize * lineLeading
			elems = append(elems, TextElement{
				Text: strings.ToUpper(s.Title), X: e.centerX(), Y: y,
				FontSize: headerSize, FontFamily: e.headingFont, FontWeight: "bold",
				Color: e.accent, Anchor: AnchorMiddle, MaxWidth: width,
			})
			y += headerGapPt * e.pp
		}

		for _, item := range s.Items {
			elems, y = e.placeItem(elems, item, scale, y)
			y += itemGapPt * e.pp
		}
		y += sectionGapPt * e.pp
	}
	cursor := y

	if c.Footer != "" {
		footerSize := e.size(roleFooter, scale)
		fy := e.footerTop
		for _, line := range text.WrapText(c.Footer, footerSize, width) {
			fy += footerSize * headingLeading
			elems = append(elems, TextElement{
				Text: line, X: e.centerX(), Y: fy,
				FontSize: footerSize, FontFamily: e.bodyFont, FontWeight: "normal",
				Color: e.descColor, Anchor: AnchorMiddle, MaxWidth: width,
			})
		}
	}

	return elems, cursor
}

// placeItem lays out one item's name, price, and description lines.
//
// Narrow mode merges name and price into a single centered line: the usual
// left/right split clips prices illegibly in a narrow column.
func (e *engine) placeItem(elems []TextElement, item menu.Item, scale float64, y float64) ([]TextElement, float64) {
	width := e.contentWidth()
	nameSize := e.size(roleName, scale)

	if e.narrow {
		line := item.Name
		if item.Price != "" {
			line = fmt.Sprintf("%s  ·  %s", item.Name, item.Price)
		}
		for _, l := range text.WrapText(line, nameSize, width) {
			y += nameSize * lineLeading
			elems = append(elems, TextElement{
				Text: l, X: e.centerX(), Y: y,
				FontSize: nameSize, FontFamily: e.bodyFont, FontWeight: "normal",
				Color: e.dark, Anchor: AnchorMiddle, MaxWidth: width,
			})
		}
	} else {
		nameWidth := width
		if item.Price != "" {
			nameWidth = width * (1 - priceColumnShare)
		}
		for i, l := range text.WrapText(item.Name, nameSize, nameWidth) {
			y += nameSize * lineLeading
			elems = append(elems, TextElement{
				Text: l, X: e.left, Y: y,
				FontSize: nameSize, FontFamily: e.bodyFont, FontWeight: "normal",
				Color: e.dark, Anchor: AnchorStart, MaxWidth: nameWidth,
			})
			if i == 0 && item.Price != "" {
				elems = append(elems, TextElement{
					Text: item.Price, X: e.right, Y: y,
					FontSize: nameSize, FontFamily: e.bodyFont, FontWeight: "normal",
					Color: e.dark, Anchor: AnchorEnd, MaxWidth: width * priceColumnShare,
				})
			}
		}
	}

	if item.Description != "" {
		descSize := e.size(roleDesc, scale)
		for _, l := range text.WrapText(item.Description, descSize, width) {
			y += descSize * descLeading
			el := TextElement{
				Text: l, Y: y,
				FontSize: descSize, FontFamily: e.bodyFont, FontWeight: "normal",
				Color: e.descColor, MaxWidth: width,
			}
			if e.narrow {
				el.X, el.Anchor = e.centerX(), AnchorMiddle
			} else {
				el.X, el.Anchor = e.left, AnchorStart
			}
			elems = append(elems, el)
		}
	}

	return elems, y
}
