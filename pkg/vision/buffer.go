package vision

import (
	"image"
	"io"

	// Register decoders for the formats background providers return.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/menuforge/menuforge/pkg/errors"
)

// PixelBuffer is a decoded background image with alpha stripped.
// Pix holds row-major RGB triplets: the pixel at (x, y) starts at
// (y*Width + x) * Channels. Buffers are read-only once built.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Decode reads an encoded image and converts it to an RGB pixel buffer.
// Supported formats: PNG, JPEG, GIF, WebP, BMP. An undecodable stream is
// reported as ErrCodeInvalidImage; the detector itself never fails.
func Decode(r io.Reader) (*PixelBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "cannot decode background image")
	}
	return FromImage(img), nil
}

// FromImage converts any decoded image to an RGB pixel buffer.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	buf := &PixelBuffer{
		Width:    w,
		Height:   h,
		Channels: 3,
		Pix:      make([]byte, w*h*3),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf.Pix[i] = byte(r >> 8)
			buf.Pix[i+1] = byte(g >> 8)
			buf.Pix[i+2] = byte(b >> 8)
			i += 3
		}
	}
	return buf
}

// rgb returns the color channels at (x, y) as floats.
func (b *PixelBuffer) rgb(x, y int) (float64, float64, float64) {
	i := (y*b.Width + x) * b.Channels
	return float64(b.Pix[i]), float64(b.Pix[i+1]), float64(b.Pix[i+2])
}

// brightness returns the mean of the color channels at (x, y).
func (b *PixelBuffer) brightness(x, y int) float64 {
	r, g, bl := b.rgb(x, y)
	return (r + g + bl) / 3
}
