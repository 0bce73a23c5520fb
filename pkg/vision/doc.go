// Package vision analyzes raster backgrounds for text placement.
//
// # Overview
//
// AI-generated menu backgrounds carry decorative artwork in unpredictable
// places. Before text can be overlaid, the background must be scanned for a
// rectangular region quiet enough to host legible copy. This package provides:
//
//   - [PixelBuffer]: a decoded RGB pixel buffer (alpha stripped)
//   - [Decode]: image decoding for PNG, JPEG, GIF, WebP and BMP
//   - [MeasureClearZone]: the clear-zone detector
//
// # Detection strategy
//
// The detector partitions the image into horizontal bands and scores each
// band's "busyness" as the standard deviation of sampled pixel brightness.
// The longest contiguous run of quiet bands becomes the vertical extent of
// the zone; if no run is tall enough, a fixed fractional fallback keeps the
// layout engine supplied with a usable region. Horizontal bounds come from a
// color-distance sweep outward from the image center.
//
// Usage:
//
//	buf, err := vision.Decode(bytes.NewReader(data))
//	if err != nil {
//	    return err
//	}
//	zone := vision.MeasureClearZone(buf)
//
// MeasureClearZone is a total function: it always returns a zone satisfying
// 0 <= Top < Bottom <= Height and 0 <= Left < Right <= Width. A fully busy
// image yields the fallback zone rather than an error.
package vision
