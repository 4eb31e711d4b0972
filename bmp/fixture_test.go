package bmp

import (
	"encoding/binary"
	"image/color"
)

// testBMP describes a BMP file to be assembled in memory.
type testBMP struct {
	headerSize  uint32
	width       int32
	height      int32
	bpp         uint16
	compression uint32
	colorsUsed  uint32
	masks       [4]uint32 // r, g, b, a; written where the header has room
	colorSpace  uint32    // defaults to sRGB for V4/V5 headers
	extraMasks  []uint32  // written right after the info header
	palette     []color.RGBA
	rows        [][]byte // stored rows in file order, padded to the stride on build
	magic       []byte   // defaults to "BM"
}

func (t testBMP) build() []byte {
	hs := t.headerSize
	if hs == 0 {
		hs = InfoHeaderV1
	}
	le := binary.LittleEndian

	info := make([]byte, 124)
	le.PutUint32(info[0:], hs)
	le.PutUint32(info[4:], uint32(t.width))
	le.PutUint32(info[8:], uint32(t.height))
	le.PutUint16(info[12:], 1)
	le.PutUint16(info[14:], t.bpp)
	le.PutUint32(info[16:], t.compression)
	le.PutUint32(info[32:], t.colorsUsed)
	for i, m := range t.masks {
		le.PutUint32(info[40+i*4:], m)
	}
	cs := t.colorSpace
	if cs == 0 {
		cs = lcsSRGB
	}
	le.PutUint32(info[56:], cs)
	info = info[:hs]

	var tail []byte
	for _, m := range t.extraMasks {
		tail = le.AppendUint32(tail, m)
	}
	for _, c := range t.palette {
		tail = append(tail, c.B, c.G, c.R, c.A)
	}

	stride := rowStride(int(t.bpp), int(t.width))
	var pixels []byte
	for _, r := range t.rows {
		row := make([]byte, stride)
		copy(row, r)
		pixels = append(pixels, row...)
	}

	offset := fileHeaderLen + len(info) + len(tail)
	file := make([]byte, fileHeaderLen, offset+len(pixels))
	magic := t.magic
	if magic == nil {
		magic = []byte("BM")
	}
	copy(file[0:2], magic)
	le.PutUint32(file[2:], uint32(offset+len(pixels)))
	le.PutUint32(file[10:], uint32(offset))
	file = append(file, info...)
	file = append(file, tail...)
	return append(file, pixels...)
}

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// rgb24 stores one 24-bit pixel in file order (blue, green, red).
func rgb24(r, g, b byte) []byte { return []byte{b, g, r} }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
