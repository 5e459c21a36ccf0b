package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func grayImage(h, w int, fill func(y, x int) uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: fill(y, x)})
		}
	}
	return g
}

func TestNormalize(t *testing.T) {
	g := grayImage(1, 3, func(_, x int) uint8 {
		return []uint8{0, 255, 51}[x]
	})

	m := Normalize(g)

	if m.At(0, 0) != -0.5 {
		t.Errorf("expected 0 -> -0.5, got %v", m.At(0, 0))
	}
	if m.At(0, 1) != 0.5 {
		t.Errorf("expected 255 -> 0.5, got %v", m.At(0, 1))
	}
	if got := m.At(0, 2); got < -0.3001 || got > -0.2999 {
		t.Errorf("expected 51 -> -0.3, got %v", got)
	}
}

func TestNormalize_SubImage(t *testing.T) {
	g := grayImage(4, 4, func(y, x int) uint8 { return uint8(y*4 + x) })
	sub := g.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	m := Normalize(sub)
	if m.Height != 2 || m.Width != 2 {
		t.Fatalf("expected 2x2, got %dx%d", m.Height, m.Width)
	}
	if want := float32(5)/255 - 0.5; m.At(0, 0) != want {
		t.Errorf("expected %v, got %v", want, m.At(0, 0))
	}
}

func TestPadTop(t *testing.T) {
	for _, h := range []int{1, 5, 31} {
		g := grayImage(h, 7, func(y, x int) uint8 { return uint8(y*7 + x) })
		m := Preprocess(g)

		if m.Height != h+1 {
			t.Errorf("height %d: expected %d rows, got %d", h, h+1, m.Height)
		}
		if m.Width != 7 {
			t.Errorf("height %d: expected width 7, got %d", h, m.Width)
		}
		for x := 0; x < m.Width; x++ {
			if m.At(0, x) != m.At(1, x) {
				t.Errorf("height %d: row 0 differs from row 1 at column %d", h, x)
			}
		}
		if h > 1 && m.At(2, 0) != float32(7)/255-0.5 {
			t.Errorf("height %d: original row 1 not shifted down", h)
		}
	}

	t.Run("empty image", func(t *testing.T) {
		m := PadTop(NewImage(0, 0))
		if m.Height != 0 {
			t.Errorf("expected empty image, got height %d", m.Height)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("gray png", func(t *testing.T) {
		var buf bytes.Buffer
		if err := png.Encode(&buf, grayImage(3, 5, func(y, x int) uint8 { return uint8(10 * (y + x)) })); err != nil {
			t.Fatal(err)
		}

		g, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Bounds().Dx() != 5 || g.Bounds().Dy() != 3 {
			t.Errorf("unexpected size %v", g.Bounds())
		}
		if g.GrayAt(4, 2).Y != 60 {
			t.Errorf("expected 60, got %d", g.GrayAt(4, 2).Y)
		}
	})

	t.Run("color png is reduced to luma", func(t *testing.T) {
		rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
		rgba.Set(0, 0, color.White)
		rgba.Set(1, 0, color.Black)
		var buf bytes.Buffer
		if err := png.Encode(&buf, rgba); err != nil {
			t.Fatal(err)
		}

		g, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.GrayAt(0, 0).Y != 255 || g.GrayAt(1, 0).Y != 0 {
			t.Errorf("unexpected luma %d %d", g.GrayAt(0, 0).Y, g.GrayAt(1, 0).Y)
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		src := grayImage(31, 40, func(_, _ int) uint8 { return 128 })
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 100}); err != nil {
			t.Fatal(err)
		}

		g, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Bounds().Dx() != 40 || g.Bounds().Dy() != 31 {
			t.Errorf("unexpected size %v", g.Bounds())
		}
		if y := g.GrayAt(10, 10).Y; y < 126 || y > 130 {
			t.Errorf("expected about 128, got %d", y)
		}
	})

	t.Run("empty data", func(t *testing.T) {
		if _, err := Decode(nil); !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := Decode([]byte("not an image")); !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})
}
