package bmp

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLE(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x88}
	assert.Equal(t, uint16(0x0201), u16(b))
	assert.Equal(t, uint32(0x04030201), u32(b))
	assert.Equal(t, uint64(0x8807060504030201), u64(b))

	neg := []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, int16(-2), i16(neg))
	assert.Equal(t, int32(-2), i32(neg))
	assert.Equal(t, int64(-2), i64(neg))
	assert.Equal(t, int32(0x7FFFFFFF), i32([]byte{0xFF, 0xFF, 0xFF, 0x7F}))
}

// fullInfoHeader fills every field of a 124-byte header with a nonzero value
// and labels the result with the given size.
func fullInfoHeader(size uint32) []byte {
	file := testBMP{
		headerSize:  InfoHeaderV5,
		width:       7,
		height:      -5,
		bpp:         32,
		compression: BI_BITFIELDS,
		colorsUsed:  9,
		masks:       [4]uint32{0xFF, 0xFF00, 0xFF0000, 0xFF000000},
	}.build()[:fileHeaderLen+InfoHeaderV5]
	binary.LittleEndian.PutUint32(file[fileHeaderLen:], size)
	return file
}

func TestParseInfoHeaderFieldSetPerVersion(t *testing.T) {
	for _, size := range []uint32{InfoHeaderV1, InfoHeaderV2, InfoHeaderV3, InfoHeaderV4, InfoHeaderV5} {
		t.Run(Header{Info: InfoHeader{Size: size}}.Version(), func(t *testing.T) {
			file := fullInfoHeader(size)

			ih, err := parseInfoHeader(newSource(bytes.NewReader(file)))
			require.NoError(t, err)

			assert.Equal(t, size, ih.Size)
			assert.Equal(t, int32(7), ih.Width)
			assert.Equal(t, int32(-5), ih.Height)
			assert.Equal(t, uint16(1), ih.Planes)
			assert.Equal(t, uint16(32), ih.BitsPerPixel)
			assert.Equal(t, uint32(BI_BITFIELDS), ih.Compression)
			assert.Equal(t, uint32(9), ih.ColorsUsed)

			if size >= InfoHeaderV2 {
				assert.Equal(t, [3]uint32{0xFF, 0xFF00, 0xFF0000}, [3]uint32{ih.RedMask, ih.GreenMask, ih.BlueMask})
			} else {
				assert.Zero(t, ih.RedMask|ih.GreenMask|ih.BlueMask)
			}
			if size >= InfoHeaderV3 {
				assert.Equal(t, uint32(0xFF000000), ih.AlphaMask)
			} else {
				assert.Zero(t, ih.AlphaMask)
			}
			if size >= InfoHeaderV4 {
				assert.Equal(t, uint32(lcsSRGB), ih.ColorSpace)
			} else {
				assert.Zero(t, ih.ColorSpace)
			}
		})
	}
}

func TestFieldGroupsAreContiguous(t *testing.T) {
	end := 0
	for _, g := range infoFieldGroups {
		assert.Equal(t, end, g.offset)
		end = g.offset + g.length
		assert.Equal(t, int(g.minSize), end, "group introduced by %d-byte header", g.minSize)
	}
	assert.Equal(t, InfoHeaderV5, end)
}

func TestUnsupportedHeaderVersion(t *testing.T) {
	for _, size := range []uint32{0, InfoHeaderCore, 64, 100, 128} {
		file := fullInfoHeader(size)
		_, err := DecodeHeaderBytes(file)
		assert.True(t, errors.Is(err, ErrUnsupportedHeaderVersion), "size %d: %v", size, err)
	}
}

func TestInvalidMagic(t *testing.T) {
	for _, magic := range []string{"MB", "BA", "\x00\x00", "PN"} {
		file := testBMP{magic: []byte(magic), width: 1, height: 1, bpp: 24, rows: [][]byte{rgb24(1, 2, 3)}}.build()
		_, err := DecodeBytes(file)
		assert.True(t, errors.Is(err, ErrInvalidMagic), "magic %q: %v", magic, err)
	}

	// Nothing after the signature matters.
	_, err := DecodeBytes([]byte("GIF89a....................................."))
	assert.True(t, errors.Is(err, ErrInvalidMagic))
}

func TestUnsupportedCompression(t *testing.T) {
	for _, c := range []uint32{BI_RLE8, BI_RLE4, BI_JPEG, BI_PNG, BI_ALPHABITFIELDS, BI_CMYK, 99} {
		file := testBMP{width: 1, height: 1, bpp: 8, compression: c, palette: []color.RGBA{red}, colorsUsed: 1, rows: [][]byte{{0}}}.build()
		_, err := DecodeBytes(file)
		assert.True(t, errors.Is(err, ErrUnsupportedCompression), "%s: %v", CompressionName(c), err)
	}
}

func TestUnsupportedColorSpace(t *testing.T) {
	for _, size := range []uint32{InfoHeaderV4, InfoHeaderV5} {
		file := testBMP{
			headerSize: size,
			colorSpace: 0x57696E20, // "Win "
			width:      1,
			height:     1,
			bpp:        24,
			rows:       [][]byte{rgb24(1, 2, 3)},
		}.build()
		_, err := DecodeBytes(file)
		assert.True(t, errors.Is(err, ErrUnsupportedColorSpace), "size %d: %v", size, err)
	}
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name string
		bmp  testBMP
		want error
	}{
		{"zero bpp", testBMP{width: 1, height: 1, bpp: 0}, ErrUnsupportedBitDepth},
		{"64 bpp", testBMP{width: 1, height: 1, bpp: 64}, ErrUnsupportedBitDepth},
		{"zero width", testBMP{width: 0, height: 1, bpp: 24}, ErrInvalidDimensions},
		{"negative width", testBMP{width: -4, height: 1, bpp: 24}, ErrInvalidDimensions},
		{"zero height", testBMP{width: 1, height: 0, bpp: 24}, ErrInvalidDimensions},
		{"huge", testBMP{width: 1 << 20, height: 1 << 20, bpp: 24}, ErrInvalidDimensions},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeHeaderBytes(tc.bmp.build())
			assert.True(t, errors.Is(err, tc.want), "%v", err)
		})
	}
}

func TestFileUnreadable(t *testing.T) {
	_, err := Decode("testdata/does-not-exist.bmp")
	assert.True(t, errors.Is(err, ErrFileUnreadable), "%v", err)

	file := testBMP{width: 2, height: 2, bpp: 24, rows: [][]byte{rgb24(1, 2, 3), rgb24(4, 5, 6)}}.build()
	for _, n := range []int{0, 1, 13, 20, len(file) - 1} {
		_, err := DecodeBytes(file[:n])
		assert.True(t, errors.Is(err, ErrFileUnreadable), "truncated to %d: %v", n, err)
	}
}

func TestClaimedSizeBeyondFile(t *testing.T) {
	// 16384x16384 at 32 bpp claims 1 GiB of pixels the file does not have.
	file := testBMP{width: 1 << 14, height: 1 << 14, bpp: 32}.build()
	_, err := DecodeBytes(file)
	assert.True(t, errors.Is(err, ErrFileUnreadable), "%v", err)

	// A reader that cannot report its size fails on the first short chunk.
	_, err = DecodeReader(readerAtOnly{bytes.NewReader(file)})
	assert.True(t, errors.Is(err, ErrFileUnreadable), "%v", err)

	small := testBMP{width: 64, height: 64, bpp: 32}.build()
	_, err = DecodeReader(readerAtOnly{bytes.NewReader(small[:len(small)-1])})
	assert.True(t, errors.Is(err, ErrFileUnreadable), "%v", err)
}

func TestChunkedReadOfUnsizedReader(t *testing.T) {
	data := make([]byte, 3*readChunk+5)
	for i := range data {
		data[i] = byte(i * 7)
	}
	src := newSource(readerAtOnly{bytes.NewReader(data)})
	assert.Equal(t, int64(-1), src.size)

	got, err := src.read(3, len(data)-3)
	require.NoError(t, err)
	assert.Equal(t, data[3:], got)

	_, err = src.read(3, len(data))
	assert.True(t, errors.Is(err, ErrFileUnreadable), "%v", err)
}

type readerAtOnly struct{ r io.ReaderAt }

func (r readerAtOnly) ReadAt(p []byte, off int64) (int, error) { return r.r.ReadAt(p, off) }

func TestPaletteLenClamped(t *testing.T) {
	h := Header{Info: InfoHeader{BitsPerPixel: 2, ColorsUsed: 1 << 30}}
	assert.Equal(t, 4, h.PaletteLen())
	h.Info.ColorsUsed = 3
	assert.Equal(t, 3, h.PaletteLen())
	h.Info.BitsPerPixel = 24
	assert.Equal(t, 0, h.PaletteLen())
}

func TestHeaderAccessors(t *testing.T) {
	h, err := DecodeHeaderBytes(testBMP{width: 5, height: -3, bpp: 4, rows: make([][]byte, 3)}.build())
	require.NoError(t, err)
	assert.True(t, h.TopDown())
	assert.Equal(t, 5, h.Width())
	assert.Equal(t, 3, h.Height())
	assert.True(t, h.Paletted())
	assert.Equal(t, 16, h.PaletteLen())
	assert.Equal(t, "BITMAPINFOHEADER", h.Version())
	assert.Equal(t, "BI_RGB", CompressionName(h.Info.Compression))
}
