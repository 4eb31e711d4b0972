package bmp

import (
	"image"
	"image/color"

	xxhash "github.com/cespare/xxhash/v2"
)

// Image is a fully decoded bitmap. Pixels are stored bottom-up: pixel
// (col, row) lives at col + row*width and row 0 is the bottom of the image.
type Image struct {
	width, height int
	pix           []color.RGBA
}

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

// Pixels returns a copy of the pixel buffer.
func (m *Image) Pixels() []color.RGBA {
	return append([]color.RGBA(nil), m.pix...)
}

// At returns the pixel at col, row with row 0 at the bottom.
func (m *Image) At(col, row int) color.RGBA {
	return m.pix[col+row*m.width]
}

// Bytes returns the pixel buffer as packed RGBA bytes, bottom-up.
func (m *Image) Bytes() []byte {
	b := make([]byte, 0, len(m.pix)*4)
	for _, p := range m.pix {
		b = append(b, p.R, p.G, p.B, p.A)
	}
	return b
}

// ToRGBA converts to a top-down *image.RGBA for the image/* packages. Colors
// are premultiplied by alpha, and an image without any alpha comes out
// opaque, as with ToNRGBA.
func (m *Image) ToRGBA() *image.RGBA {
	opaque := !m.HasAlpha()
	dst := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	for row := 0; row < m.height; row++ {
		y := m.height - 1 - row
		for col := 0; col < m.width; col++ {
			p := color.NRGBA(m.pix[col+row*m.width])
			if opaque {
				p.A = 0xFF
			}
			dst.Set(col, y, p)
		}
	}
	return dst
}

// Checksum is the xxhash64 of Bytes. Two images with the same dimensions and
// the same checksum hold the same pixels.
func (m *Image) Checksum() uint64 {
	return xxhash.Sum64(m.Bytes())
}

// HasAlpha reports whether any pixel carries a nonzero alpha value.
func (m *Image) HasAlpha() bool {
	for _, p := range m.pix {
		if p.A != 0 {
			return true
		}
	}
	return false
}

// ToNRGBA converts to a top-down *image.NRGBA for encoders. Alpha is taken
// as straight, not premultiplied. An image without any alpha, which covers
// every 24-bit file, comes out opaque.
func (m *Image) ToNRGBA() *image.NRGBA {
	opaque := !m.HasAlpha()
	dst := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for row := 0; row < m.height; row++ {
		y := m.height - 1 - row
		for col := 0; col < m.width; col++ {
			p := m.pix[col+row*m.width]
			if opaque {
				p.A = 0xFF
			}
			dst.SetNRGBA(col, y, color.NRGBA(p))
		}
	}
	return dst
}
