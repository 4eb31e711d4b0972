package api

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelsplace/bmpkit/bmp"
)

// bmp24 encodes a bottom-up 24-bit BMP. pix is indexed col + row*width with
// row 0 at the bottom.
func bmp24(width, height int, pix ...color.RGBA) []byte {
	stride := (24*width + 31) / 32 * 4
	le := binary.LittleEndian
	out := make([]byte, 54, 54+stride*height)
	out[0], out[1] = 'B', 'M'
	le.PutUint32(out[2:], uint32(54+stride*height))
	le.PutUint32(out[10:], 54)
	le.PutUint32(out[14:], 40)
	le.PutUint32(out[18:], uint32(width))
	le.PutUint32(out[22:], uint32(height))
	le.PutUint16(out[26:], 1)
	le.PutUint16(out[28:], 24)
	for row := 0; row < height; row++ {
		line := make([]byte, stride)
		for col := 0; col < width; col++ {
			p := pix[col+row*width]
			copy(line[col*3:], []byte{p.B, p.G, p.R})
		}
		out = append(out, line...)
	}
	return out
}

var (
	red  = color.RGBA{R: 0xFF}
	blue = color.RGBA{B: 0xFF}
)

func TestDecodeToRGBA(t *testing.T) {
	w, h, pix, err := DecodeToRGBA(bmp24(1, 2, red, blue))
	require.NoError(t, err)
	assert.Equal(t, 1, w)
	assert.Equal(t, 2, h)
	// top row first, opaque
	assert.Equal(t, []byte{0, 0, 0xFF, 0xFF, 0xFF, 0, 0, 0xFF}, pix)

	_, _, _, err = DecodeToRGBA([]byte("not a bitmap, not even close"))
	assert.True(t, errors.Is(err, bmp.ErrInvalidMagic))
}

func TestBMPToPNG(t *testing.T) {
	data := bmp24(2, 1, red, blue)
	for _, scale := range []int{1, 3} {
		out, err := BMPToPNG(data, scale)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 2*scale, img.Bounds().Dx())
		assert.Equal(t, scale, img.Bounds().Dy())

		r, _, _, a := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(0xFFFF), r)
		assert.Equal(t, uint32(0xFFFF), a)
		_, _, b, _ := img.At(2*scale-1, scale-1).RGBA()
		assert.Equal(t, uint32(0xFFFF), b)
	}

	for _, scale := range []int{0, -1, MaxPNGScale + 1} {
		_, err := BMPToPNG(data, scale)
		assert.Error(t, err, "scale %d", scale)
	}
}

func TestBMPToGLB(t *testing.T) {
	out, err := BMPToGLB(bmp24(2, 2, red, blue, red, blue))
	require.NoError(t, err)

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(out)).Decode(&doc))
	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, gltf.AlphaOpaque, doc.Materials[0].AlphaMode)

	prim := doc.Meshes[0].Primitives[0]
	require.NotNil(t, prim.Indices)
	// two 1x2 columns
	assert.Equal(t, uint32(12), doc.Accessors[*prim.Indices].Count)
}

func TestPackRoundTrip(t *testing.T) {
	files := map[string][]byte{
		"b.bmp": bmp24(1, 1, red),
		"a.bmp": bmp24(2, 1, red, blue),
	}
	for _, comp := range []bmp.PackCompression{bmp.PackCompNone, bmp.PackCompZlib, bmp.PackCompZstd} {
		data, err := PackBMPs(files, comp)
		require.NoError(t, err)

		again, err := PackBMPs(files, comp)
		require.NoError(t, err)
		assert.Equal(t, data, again, "output must not depend on map order")

		got, err := UnpackBMPPACKToMemory(data)
		require.NoError(t, err)
		assert.Equal(t, files, got)
	}

	_, err := PackBMPs(nil, bmp.PackCompNone)
	assert.Error(t, err)
	_, err = PackBMPs(map[string][]byte{"x.txt": []byte("plain text, no bitmap here")}, bmp.PackCompNone)
	assert.Error(t, err)
}

func TestPackToGLB(t *testing.T) {
	data, err := PackBMPsLayout(map[string][]byte{
		"one.bmp":   bmp24(1, 1, red),
		"two.bmp":   bmp24(2, 1, red, blue),
		"three.bmp": bmp24(1, 2, blue, blue),
	}, bmp.LayoutCDC, bmp.PackCompZstd)
	require.NoError(t, err)

	out, err := PackToGLB(data)
	require.NoError(t, err)
	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(out)).Decode(&doc))
	require.Len(t, doc.Nodes, 3)

	// sorted names on a 2x2 grid of 2x2 cells
	assert.Equal(t, "one.bmp", doc.Nodes[0].Name)
	assert.Equal(t, [3]float32{2, 0, 0}, doc.Nodes[1].Translation)
	assert.Equal(t, [3]float32{0, 2, 0}, doc.Nodes[2].Translation)
}

func TestParseNames(t *testing.T) {
	c, ok := ParseCompression("zstd")
	assert.True(t, ok)
	assert.Equal(t, bmp.PackCompZstd, c)
	_, ok = ParseCompression("gzip")
	assert.False(t, ok)

	l, ok := ParseLayout("cdc")
	assert.True(t, ok)
	assert.Equal(t, bmp.LayoutCDC, l)
	_, ok = ParseLayout("")
	assert.False(t, ok)
}

func TestParseKeyColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ff00ff", color.RGBA{R: 0xFF, B: 0xFF}, true},
		{"#10203040", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, true},
		{"ff00ff", color.RGBA{}, false},
		{"#ff00f", color.RGBA{}, false},
		{"#gg0000", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tc := range tests {
		got, err := ParseKeyColor(tc.in)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
