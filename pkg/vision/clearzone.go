package vision

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Detection constants. These were tuned empirically against the band and
// sweep sampling strategy below; the two thresholds measure different
// statistics (brightness stddev vs. RGB distance) and are not interchangeable.
const (
	// BandHeight is the height in pixels of each horizontal scoring band.
	BandHeight = 50

	// SampleStride is the pixel stride for busyness sampling in both axes.
	SampleStride = 50

	// BusynessThreshold is the maximum average brightness stddev for a band
	// to count as quiet.
	BusynessThreshold = 40.0

	// MinClearHeight is the minimum pixel height of a quiet run before the
	// detector falls back to the fractional zone.
	MinClearHeight = 300

	// SweepStride is the column stride for the horizontal margin sweep.
	SweepStride = 10

	// ColorDistanceThreshold is the maximum Euclidean RGB distance from the
	// reference color for a column to count as clear.
	ColorDistanceThreshold = 75.0

	// Fallback zone fractions used when no quiet run is tall enough.
	fallbackTopFraction    = 0.25
	fallbackBottomFraction = 0.80
)

// ClearZone is the rectangular region of a background judged quiet enough to
// host overlay text. Coordinates are pixels in source-image space with a
// top-left origin. Invariants: 0 <= Top < Bottom <= image height and
// 0 <= Left < Right <= image width.
type ClearZone struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Width returns the horizontal span of the zone.
func (z ClearZone) Width() int { return z.Right - z.Left }

// Height returns the vertical span of the zone.
func (z ClearZone) Height() int { return z.Bottom - z.Top }

// MeasureClearZone finds the largest visually uniform region of the
// background. It is a total function: every valid buffer yields a valid
// zone. A fully busy image falls back to a fixed fractional vertical zone
// so the layout engine always has somewhere to put text.
func MeasureClearZone(buf *PixelBuffer) ClearZone {
	zone, _ := MeasureClearZoneInfo(buf)
	return zone
}

// MeasureClearZoneInfo is MeasureClearZone plus a flag reporting whether a
// quiet run was actually found (true) or the fractional fallback applied
// (false).
func MeasureClearZoneInfo(buf *PixelBuffer) (ClearZone, bool) {
	top, bottom, found := measureVerticalZone(buf)
	left, right := measureHorizontalZone(buf, top, bottom)
	return ClearZone{Top: top, Bottom: bottom, Left: left, Right: right}, found
}

// measureVerticalZone scores each horizontal band and returns the vertical
// extent of the longest contiguous quiet run, or the fallback fractions if
// the run is shorter than MinClearHeight.
func measureVerticalZone(buf *PixelBuffer) (top, bottom int, found bool) {
	scores := scoreBands(buf)

	bestStart, bestLen := -1, 0
	runStart, runLen := -1, 0
	for i, score := range scores {
		if score < BusynessThreshold {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			// Strict improvement keeps the first occurrence on ties.
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
		} else {
			runLen = 0
		}
	}

	if bestLen*BandHeight < MinClearHeight {
		top = int(math.Round(float64(buf.Height) * fallbackTopFraction))
		bottom = int(math.Round(float64(buf.Height) * fallbackBottomFraction))
		if bottom <= top {
			top, bottom = 0, buf.Height
		}
		return top, bottom, false
	}

	top = bestStart * BandHeight
	bottom = (bestStart + bestLen) * BandHeight
	if bottom > buf.Height {
		bottom = buf.Height
	}
	return top, bottom, true
}

// scoreBands computes the busyness score of every band. Bands are
// independent, so scoring runs across cores; results are stored by band
// index to keep the longest-run scan deterministic.
func scoreBands(buf *PixelBuffer) []float64 {
	n := (buf.Height + BandHeight - 1) / BandHeight
	scores := make([]float64, n)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			scores[i] = scoreBand(buf, i*BandHeight, min((i+1)*BandHeight, buf.Height))
			return nil
		})
	}
	_ = g.Wait() // scoreBand never fails

	return scores
}

// scoreBand measures visual busyness in rows [y0, y1): the standard
// deviation of sampled brightness within each sampled row, averaged across
// the band. A uniform band scores near zero.
func scoreBand(buf *PixelBuffer, y0, y1 int) float64 {
	var sum float64
	rows := 0
	for y := y0; y < y1; y += SampleStride {
		var vals []float64
		for x := 0; x < buf.Width; x += SampleStride {
			vals = append(vals, buf.brightness(x, y))
		}
		if len(vals) == 0 {
			continue
		}
		sum += stddev(vals)
		rows++
	}
	if rows == 0 {
		return 0
	}
	return sum / float64(rows)
}

// measureHorizontalZone sweeps outward from the image center and stops at
// the first column whose average RGB distance from the reference color
// exceeds the threshold. The reference color is read at the horizontal
// center of the middle sample row.
func measureHorizontalZone(buf *PixelBuffer, top, bottom int) (left, right int) {
	rows := sampleRows(top, bottom, buf.Height)
	cx := buf.Width / 2
	refR, refG, refB := buf.rgb(cx, rows[1])

	distance := func(x int) float64 {
		var sum float64
		for _, y := range rows {
			r, g, b := buf.rgb(x, y)
			sum += math.Sqrt((r-refR)*(r-refR) + (g-refG)*(g-refG) + (b-refB)*(b-refB))
		}
		return sum / float64(len(rows))
	}

	// The boundary lands one stride back from the breaking column: left and
	// right track the last column confirmed clear in each direction.
	left, right = cx, cx
	for x := cx; x >= 0; x -= SweepStride {
		if distance(x) > ColorDistanceThreshold {
			break
		}
		left = x
	}
	for x := cx; x < buf.Width; x += SweepStride {
		if distance(x) > ColorDistanceThreshold {
			break
		}
		right = x
	}

	// Right is exclusive: the stride past the last clear column is covered.
	right += SweepStride
	if right > buf.Width {
		right = buf.Width
	}
	return left, right
}

// sampleRows picks three rows spanning the vertical zone at 25%, 50% and
// 75% of its height, clamped to the image.
func sampleRows(top, bottom, height int) [3]int {
	span := bottom - top
	rows := [3]int{
		top + span/4,
		top + span/2,
		top + span*3/4,
	}
	for i, y := range rows {
		if y < 0 {
			rows[i] = 0
		}
		if y >= height {
			rows[i] = height - 1
		}
	}
	return rows
}

// stddev computes the population standard deviation.
func stddev(vals []float64) float64 {
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(vals)))
}
