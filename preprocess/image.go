// Package preprocess turns encoded record images into the float grids the
// recognition model consumes: decode to a single luma channel, rescale
// [0, 255] to [-0.5, 0.5], then pad the top with a copy of the first row.
package preprocess

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is wrapped by every image decoding failure.
var ErrDecode = errors.New("preprocess: cannot decode image")

// Image is a single-channel float image stored row-major.
type Image struct {
	Height int
	Width  int
	Pix    []float32
}

// NewImage returns a zeroed image of the given size.
func NewImage(height, width int) *Image {
	return &Image{
		Height: height,
		Width:  width,
		Pix:    make([]float32, height*width),
	}
}

// At returns the pixel at row y, column x.
func (m *Image) At(y, x int) float32 {
	return m.Pix[y*m.Width+x]
}

// Row returns row y. The slice aliases the image.
func (m *Image) Row(y int) []float32 {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// Decode decodes JPEG, PNG, GIF, BMP, TIFF or WebP data to 8-bit grayscale.
// Color images keep only their luma.
func Decode(data []byte) (*image.Gray, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrDecode, "empty image data")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	g := toGray(img)
	if g.Rect.Empty() {
		return nil, errors.Wrapf(ErrDecode, "%s image has no pixels", format)
	}
	return g, nil
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()

	switch m := img.(type) {
	case *image.Gray:
		return m
	case *image.YCbCr:
		// JPEG decodes to YCbCr; the Y plane already is the luma.
		g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			src := m.Y[m.YOffset(b.Min.X, b.Min.Y+y):]
			copy(g.Pix[y*g.Stride:y*g.Stride+b.Dx()], src[:b.Dx()])
		}
		return g
	}

	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Rect, img, b.Min, draw.Src)
	return g
}
