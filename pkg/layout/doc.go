// Package layout computes pixel-exact text placement for menu content.
//
// # Overview
//
// The engine transforms a content tree, a brand kit, and a target format
// into an ordered list of positioned, sized, colored text elements — "the
// layout". Renderers (SVG overlay, raster preview, PDF, slide export)
// consume the layout and draw it; none of them make placement decisions of
// their own.
//
// Coordinates are in final-canvas pixel space (trim plus bleed on all
// sides) with a top-left origin; an element's Y is its baseline. Renderers
// targeting bottom-left-origin formats convert during drawing.
//
// # Placement
//
// When a clear zone measured by [vision.MeasureClearZone] is supplied, the
// content column derives from the zone's bounds; otherwise it falls back to
// the format's safe margin with the title starting at 30% of trim height.
// Two scale-down pressures — a narrow content column and estimated vertical
// overflow — combine by taking their minimum, clamped to per-role font size
// floors. After a full pass, residual overflow shrinks the scale and the
// pass repeats, at most three attempts total.
//
//	zone := vision.MeasureClearZone(buf)
//	l := layout.Compute(content, brand, format, &zone)
//
// Compute is deterministic for identical inputs and never fails on
// well-formed content; a menu with zero sections yields a layout holding
// only title (and footer) elements.
package layout
