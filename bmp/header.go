package bmp

import (
	"fmt"
	"io"
	"slices"

	"github.com/pkg/errors"
)

const (
	fileHeaderLen = 14
	maxPixels     = 1 << 28
	readChunk     = 1 << 20
)

// Info header versions, identified by their size in bytes.
const (
	InfoHeaderCore = 12 // BITMAPCOREHEADER (OS/2 style, unsupported)
	InfoHeaderV1   = 40 // BITMAPINFOHEADER
	InfoHeaderV2   = 52 // BITMAPV2INFOHEADER
	InfoHeaderV3   = 56 // BITMAPV3INFOHEADER
	InfoHeaderV4   = 108
	InfoHeaderV5   = 124
)

// Compression modes. Only BI_RGB and BI_BITFIELDS are decoded.
const (
	BI_RGB            = 0
	BI_RLE8           = 1
	BI_RLE4           = 2
	BI_BITFIELDS      = 3
	BI_JPEG           = 4
	BI_PNG            = 5
	BI_ALPHABITFIELDS = 6
	BI_CMYK           = 11
	BI_CMYKRLE8       = 12
	BI_CMYKRLE4       = 13
)

const (
	magicBM = 0x4D42     // "BM" read as a little-endian word
	lcsSRGB = 0x73524742 // LCS_sRGB, "sRGB"
)

// FileHeader is the fixed 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Magic       uint16
	FileSize    uint32
	Reserved1   uint16
	Reserved2   uint16
	PixelOffset uint32
}

// InfoHeader holds the fields of every supported DIB header version. Fields
// introduced after the detected version (Size) are left zero.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32 // negative: rows stored top-down
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32

	RedMask, GreenMask, BlueMask uint32 // >= 52 bytes
	AlphaMask                    uint32 // >= 56 bytes
	ColorSpace                   uint32 // >= 108 bytes
}

// Header is everything parsed ahead of the pixel data.
type Header struct {
	File FileHeader
	Info InfoHeader
}

// TopDown reports whether the first stored row is the top row of the image.
func (h Header) TopDown() bool { return h.Info.Height < 0 }

// Width returns the image width in pixels.
func (h Header) Width() int { return int(h.Info.Width) }

// Height returns the absolute image height in pixels.
func (h Header) Height() int {
	if h.Info.Height < 0 {
		return -int(h.Info.Height)
	}
	return int(h.Info.Height)
}

// Paletted reports whether pixels are palette indices.
func (h Header) Paletted() bool { return h.Info.BitsPerPixel <= 8 }

// PaletteLen is the number of palette entries read after the info header.
// A count of 0 means the full 1<<bpp; larger counts are clamped to that,
// since no index can reach past it.
func (h Header) PaletteLen() int {
	if !h.Paletted() {
		return 0
	}
	full := 1 << h.Info.BitsPerPixel
	if h.Info.ColorsUsed == 0 || h.Info.ColorsUsed > uint32(full) {
		return full
	}
	return int(h.Info.ColorsUsed)
}

// Version returns the Windows name of the info header structure.
func (h Header) Version() string {
	switch h.Info.Size {
	case InfoHeaderV1:
		return "BITMAPINFOHEADER"
	case InfoHeaderV2:
		return "BITMAPV2INFOHEADER"
	case InfoHeaderV3:
		return "BITMAPV3INFOHEADER"
	case InfoHeaderV4:
		return "BITMAPV4HEADER"
	case InfoHeaderV5:
		return "BITMAPV5HEADER"
	}
	return fmt.Sprintf("unknown(%d)", h.Info.Size)
}

// CompressionName returns the BI_* name of a compression mode.
func CompressionName(c uint32) string {
	switch c {
	case BI_RGB:
		return "BI_RGB"
	case BI_RLE8:
		return "BI_RLE8"
	case BI_RLE4:
		return "BI_RLE4"
	case BI_BITFIELDS:
		return "BI_BITFIELDS"
	case BI_JPEG:
		return "BI_JPEG"
	case BI_PNG:
		return "BI_PNG"
	case BI_ALPHABITFIELDS:
		return "BI_ALPHABITFIELDS"
	case BI_CMYK:
		return "BI_CMYK"
	case BI_CMYKRLE8:
		return "BI_CMYKRLE8"
	case BI_CMYKRLE4:
		return "BI_CMYKRLE4"
	}
	return fmt.Sprintf("unknown(%d)", c)
}

// fieldGroup is a run of info header bytes introduced by one header version.
// Offsets are relative to the start of the info header.
type fieldGroup struct {
	minSize uint32
	offset  int
	length  int
	read    func(h *InfoHeader, b []byte) error
}

// infoFieldGroups lists the groups in file order. A header of size N carries
// every group with minSize <= N, and N is a known version exactly when some
// group ends at N.
var infoFieldGroups = []fieldGroup{
	{minSize: InfoHeaderV1, offset: 0, length: 40, read: readBaseFields},
	{minSize: InfoHeaderV2, offset: 40, length: 12, read: readRGBMasks},
	{minSize: InfoHeaderV3, offset: 52, length: 4, read: readAlphaMask},
	{minSize: InfoHeaderV4, offset: 56, length: 52, read: readColorSpace},
	{minSize: InfoHeaderV5, offset: 108, length: 16}, // intent, profile data/size, reserved
}

func readBaseFields(h *InfoHeader, b []byte) error {
	h.Size = u32(b[0:])
	h.Width = i32(b[4:])
	h.Height = i32(b[8:])
	h.Planes = u16(b[12:])
	h.BitsPerPixel = u16(b[14:])
	h.Compression = u32(b[16:])
	h.ImageSize = u32(b[20:])
	h.XPelsPerMeter = i32(b[24:])
	h.YPelsPerMeter = i32(b[28:])
	h.ColorsUsed = u32(b[32:])
	h.ColorsImportant = u32(b[36:])
	return nil
}

func readRGBMasks(h *InfoHeader, b []byte) error {
	h.RedMask = u32(b[0:])
	h.GreenMask = u32(b[4:])
	h.BlueMask = u32(b[8:])
	return nil
}

func readAlphaMask(h *InfoHeader, b []byte) error {
	h.AlphaMask = u32(b[0:])
	return nil
}

// readColorSpace validates the color space tag; endpoints and gamma that
// follow it are ignored.
func readColorSpace(h *InfoHeader, b []byte) error {
	h.ColorSpace = u32(b[0:])
	if h.ColorSpace != lcsSRGB {
		return errors.Wrapf(ErrUnsupportedColorSpace, "color space tag 0x%08x", h.ColorSpace)
	}
	return nil
}

func knownInfoHeaderSize(size uint32) bool {
	for _, g := range infoFieldGroups {
		if uint32(g.offset+g.length) == size {
			return true
		}
	}
	return false
}

// source gives random access to the encoded file. size is the file length
// when the reader can tell, or -1.
type source struct {
	r    io.ReaderAt
	size int64
}

func newSource(r io.ReaderAt) source {
	if sz, ok := r.(interface{ Size() int64 }); ok {
		return source{r: r, size: sz.Size()}
	}
	return source{r: r, size: -1}
}

func (s source) read(off int64, n int) ([]byte, error) {
	if s.size >= 0 && off+int64(n) > s.size {
		return nil, errors.Wrapf(ErrFileUnreadable, "read %d bytes at offset %d: file is %d bytes", n, off, s.size)
	}
	// The buffer grows one chunk at a time, so a reader of unknown size
	// never costs more memory than it holds plus one chunk.
	buf := make([]byte, 0, min(n, readChunk))
	for len(buf) < n {
		start := len(buf)
		k := min(n-start, readChunk)
		buf = slices.Grow(buf, k)[:start+k]
		got, err := s.r.ReadAt(buf[start:], off+int64(start))
		if got == k {
			continue
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(ErrFileUnreadable, "read %d bytes at offset %d: %v", n, off, err)
	}
	return buf, nil
}

func parseFileHeader(src source) (FileHeader, error) {
	var fh FileHeader
	b, err := src.read(0, fileHeaderLen)
	if err != nil {
		return fh, err
	}
	fh.Magic = u16(b[0:])
	if fh.Magic != magicBM {
		return fh, errors.Wrapf(ErrInvalidMagic, "got 0x%04x", fh.Magic)
	}
	fh.FileSize = u32(b[2:])
	fh.Reserved1 = u16(b[6:])
	fh.Reserved2 = u16(b[8:])
	fh.PixelOffset = u32(b[10:])
	return fh, nil
}

func parseInfoHeader(src source) (InfoHeader, error) {
	var ih InfoHeader
	b, err := src.read(fileHeaderLen, 4)
	if err != nil {
		return ih, err
	}
	size := u32(b)
	if !knownInfoHeaderSize(size) {
		return ih, errors.Wrapf(ErrUnsupportedHeaderVersion, "info header size %d", size)
	}
	b, err = src.read(fileHeaderLen, int(size))
	if err != nil {
		return ih, err
	}
	for _, g := range infoFieldGroups {
		if g.minSize > size {
			break
		}
		if g.read == nil {
			continue
		}
		if err := g.read(&ih, b[g.offset:g.offset+g.length]); err != nil {
			return ih, err
		}
	}
	return ih, nil
}

func validateHeader(h Header) error {
	switch h.Info.Compression {
	case BI_RGB, BI_BITFIELDS:
	default:
		return errors.Wrap(ErrUnsupportedCompression, CompressionName(h.Info.Compression))
	}
	switch h.Info.BitsPerPixel {
	case 1, 2, 4, 8, 16, 24, 32:
	default:
		return errors.Wrapf(ErrUnsupportedBitDepth, "%d bits per pixel", h.Info.BitsPerPixel)
	}
	if h.Info.Width <= 0 || h.Info.Height == 0 || int64(h.Width())*int64(h.Height()) > maxPixels {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", h.Info.Width, h.Info.Height)
	}
	return nil
}

func parseHeader(src source) (Header, error) {
	var h Header
	var err error
	if h.File, err = parseFileHeader(src); err != nil {
		return h, err
	}
	if h.Info, err = parseInfoHeader(src); err != nil {
		return h, err
	}
	if err := validateHeader(h); err != nil {
		return h, err
	}
	return h, nil
}
