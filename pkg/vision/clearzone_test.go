package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/menuforge/menuforge/pkg/errors"
)

// solidBuffer builds a uniform buffer of the given color.
func solidBuffer(w, h int, r, g, b byte) *PixelBuffer {
	buf := &PixelBuffer{Width: w, Height: h, Channels: 3, Pix: make([]byte, w*h*3)}
	for i := 0; i < len(buf.Pix); i += 3 {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = r, g, b
	}
	return buf
}

// noiseRows overwrites rows [y0, y1) with a checkerboard that alternates
// between black and white at the sampling stride, guaranteeing a high
// brightness stddev in every sampled row.
func noiseRows(buf *PixelBuffer, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < buf.Width; x++ {
			var v byte
			if (x/SampleStride+y)%2 == 0 {
				v = 255
			}
			i := (y*buf.Width + x) * 3
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = v, v, v
		}
	}
}

func checkInvariants(t *testing.T, zone ClearZone, w, h int) {
	t.Helper()
	if zone.Top < 0 || zone.Top >= zone.Bottom || zone.Bottom > h {
		t.Errorf("vertical invariant violated: top=%d bottom=%d height=%d", zone.Top, zone.Bottom, h)
	}
	if zone.Left < 0 || zone.Left >= zone.Right || zone.Right > w {
		t.Errorf("horizontal invariant violated: left=%d right=%d width=%d", zone.Left, zone.Right, w)
	}
}

func TestMeasureClearZoneUniformImage(t *testing.T) {
	buf := solidBuffer(500, 1000, 120, 130, 140)
	zone := MeasureClearZone(buf)

	checkInvariants(t, zone, 500, 1000)
	if zone.Top >= 100 {
		t.Errorf("Top = %d, want < 100", zone.Top)
	}
	if zone.Bottom <= 900 {
		t.Errorf("Bottom = %d, want > 900", zone.Bottom)
	}
	if zone.Left >= 50 {
		t.Errorf("Left = %d, want < 50", zone.Left)
	}
	if zone.Right <= 450 {
		t.Errorf("Right = %d, want > 450", zone.Right)
	}
}

func TestMeasureClearZoneBusyEdges(t *testing.T) {
	buf := solidBuffer(500, 1000, 200, 200, 200)
	noiseRows(buf, 0, 200)
	noiseRows(buf, 800, 1000)

	zone := MeasureClearZone(buf)

	checkInvariants(t, zone, 500, 1000)
	if zone.Top < 150 || zone.Top > 250 {
		t.Errorf("Top = %d, want within [150, 250]", zone.Top)
	}
	if zone.Bottom < 750 || zone.Bottom > 850 {
		t.Errorf("Bottom = %d, want within [750, 850]", zone.Bottom)
	}
}

func TestMeasureClearZoneFullyBusyFallsBack(t *testing.T) {
	buf := solidBuffer(500, 1000, 0, 0, 0)
	noiseRows(buf, 0, 1000)

	zone := MeasureClearZone(buf)

	checkInvariants(t, zone, 500, 1000)
	wantTop := int(math.Round(1000 * 0.25))
	wantBottom := int(math.Round(1000 * 0.80))
	if zone.Top != wantTop {
		t.Errorf("Top = %d, want fallback %d", zone.Top, wantTop)
	}
	if zone.Bottom != wantBottom {
		t.Errorf("Bottom = %d, want fallback %d", zone.Bottom, wantBottom)
	}
}

func TestMeasureClearZoneInvariantsHold(t *testing.T) {
	tests := []struct {
		name string
		buf  *PixelBuffer
	}{
		{name: "tiny image", buf: solidBuffer(20, 20, 50, 50, 50)},
		{name: "single row", buf: solidBuffer(100, 1, 10, 10, 10)},
		{name: "single column", buf: solidBuffer(1, 400, 10, 10, 10)},
		{name: "short and wide", buf: solidBuffer(2000, 120, 240, 240, 240)},
		{
			name: "busy center",
			buf: func() *PixelBuffer {
				b := solidBuffer(600, 900, 180, 180, 180)
				noiseRows(b, 300, 600)
				return b
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone := MeasureClearZone(tt.buf)
			checkInvariants(t, zone, tt.buf.Width, tt.buf.Height)
		})
	}
}

func TestMeasureClearZoneDeterministic(t *testing.T) {
	buf := solidBuffer(800, 1200, 90, 140, 190)
	noiseRows(buf, 0, 150)
	noiseRows(buf, 950, 1200)

	first := MeasureClearZone(buf)
	for i := 0; i < 10; i++ {
		if got := MeasureClearZone(buf); got != first {
			t.Fatalf("run %d: zone = %+v, want %+v", i, got, first)
		}
	}
}

func TestDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatal(err)
	}

	buf, err := Decode(&encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.Width != 4 || buf.Height != 3 || buf.Channels != 3 {
		t.Errorf("dimensions = %dx%dx%d, want 4x3x3", buf.Width, buf.Height, buf.Channels)
	}
	if buf.Pix[0] != 10 || buf.Pix[1] != 20 || buf.Pix[2] != 30 {
		t.Errorf("first pixel = %v, want [10 20 30]", buf.Pix[:3])
	}
}

func TestDecodeInvalidImage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Fatal("Decode() error = nil, want decode failure")
	}
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidImage)
	}
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		name  string
		buf   *PixelBuffer
		quiet bool
	}{
		{name: "uniform band", buf: solidBuffer(500, 50, 128, 128, 128), quiet: true},
		{
			name: "noisy band",
			buf: func() *PixelBuffer {
				b := solidBuffer(500, 50, 0, 0, 0)
				noiseRows(b, 0, 50)
				return b
			}(),
			quiet: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreBand(tt.buf, 0, 50)
			if tt.quiet && score >= BusynessThreshold {
				t.Errorf("score = %v, want < %v", score, BusynessThreshold)
			}
			if !tt.quiet && score < BusynessThreshold {
				t.Errorf("score = %v, want >= %v", score, BusynessThreshold)
			}
		})
	}
}

func TestMeasureClearZoneInfo(t *testing.T) {
	quiet := solidBuffer(500, 1000, 240, 235, 225)
	if _, found := MeasureClearZoneInfo(quiet); !found {
		t.Error("uniform image should report a found zone")
	}

	busy := solidBuffer(500, 1000, 240, 235, 225)
	noiseRows(busy, 0, 1000)
	zone, found := MeasureClearZoneInfo(busy)
	if found {
		t.Error("fully busy image should report fallback")
	}
	if zone != MeasureClearZone(busy) {
		t.Error("Info variant should return the same zone")
	}
}
