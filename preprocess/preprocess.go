package preprocess

import "image"

// Normalize rescales 8-bit pixels from [0, 255] to [-0.5, 0.5].
func Normalize(g *image.Gray) *Image {
	b := g.Bounds()
	m := NewImage(b.Dy(), b.Dx())
	for y := 0; y < m.Height; y++ {
		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := m.Row(y)
		for x := range dst {
			dst[x] = float32(src[x])/255 - 0.5
		}
	}
	return m
}

// PadTop returns a copy of m with its first row duplicated above it, so
// the height grows by exactly one. Images with no rows are returned as is.
//
// Source images are 31 pixels tall, so one row brings them to the 32 the
// model expects. Taller or shorter inputs still get just one row.
func PadTop(m *Image) *Image {
	if m.Height == 0 {
		return m
	}
	out := NewImage(m.Height+1, m.Width)
	copy(out.Pix, m.Row(0))
	copy(out.Pix[m.Width:], m.Pix)
	return out
}

// Preprocess normalizes g and pads it with PadTop.
func Preprocess(g *image.Gray) *Image {
	return PadTop(Normalize(g))
}
