package bmp

import "image/color"

// rowStride is the byte width of one stored row, padded to 4 bytes.
func rowStride(bpp, width int) int {
	return (bpp*width + 31) / 32 * 4
}

// rowLayout locates stored rows in the pixel data so that output row 0 is
// always the bottom row of the image.
type rowLayout struct {
	width, height int
	stride        int
	topDown       bool
}

func newRowLayout(h Header) rowLayout {
	return rowLayout{
		width:   h.Width(),
		height:  h.Height(),
		stride:  rowStride(int(h.Info.BitsPerPixel), h.Width()),
		topDown: h.TopDown(),
	}
}

func (l rowLayout) size() int { return l.stride * l.height }

// rows calls fn for every output row, bottom to top. A top-down file is walked
// from its last stored row backwards.
func (l rowLayout) rows(data []byte, fn func(r int, row []byte)) {
	start, step := 0, l.stride
	if l.topDown {
		start, step = (l.height-1)*l.stride, -l.stride
	}
	for r := 0; r < l.height; r++ {
		off := start + r*step
		fn(r, data[off:off+l.stride])
	}
}

func readPalette(src source, h Header) ([]color.RGBA, error) {
	n := h.PaletteLen()
	b, err := src.read(int64(fileHeaderLen+h.Info.Size), n*4)
	if err != nil {
		return nil, err
	}
	pal := make([]color.RGBA, n)
	for i := range pal {
		e := b[i*4 : i*4+4]
		pal[i] = color.RGBA{R: e[2], G: e[1], B: e[0], A: e[3]}
	}
	return pal, nil
}

// decodePaletted expands packed palette indices. Indices past the end of the
// palette decode to transparent black.
func decodePaletted(data []byte, l rowLayout, bpp uint, pal []color.RGBA) []color.RGBA {
	pix := make([]color.RGBA, l.width*l.height)
	l.rows(data, func(r int, row []byte) {
		for col := 0; col < l.width; col++ {
			idx := int(unpackIndex(row, col, bpp))
			if idx < len(pal) {
				pix[col+r*l.width] = pal[idx]
			}
		}
	})
	return pix
}

// decodeDirect extracts masked channels from 16, 24 and 32-bit pixels.
// Channels narrower than 8 bits are not rescaled.
func decodeDirect(data []byte, l rowLayout, bpp int, m ChannelMasks) []color.RGBA {
	pix := make([]color.RGBA, l.width*l.height)
	n := bpp / 8
	l.rows(data, func(r int, row []byte) {
		for col := 0; col < l.width; col++ {
			v := packedPixel(row[col*n : col*n+n])
			pix[col+r*l.width] = color.RGBA{
				R: uint8((v & m.Red) >> m.RedShift),
				G: uint8((v & m.Green) >> m.GreenShift),
				B: uint8((v & m.Blue) >> m.BlueShift),
				A: uint8((v & m.Alpha) >> m.AlphaShift),
			}
		}
	})
	return pix
}
