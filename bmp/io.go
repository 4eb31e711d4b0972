package bmp

import (
	"bytes"
	"image/color"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Decode reads the BMP file at path. On failure no Image is returned.
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrFileUnreadable, err.Error())
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(ErrFileUnreadable, err.Error())
	}
	return DecodeReader(io.NewSectionReader(f, 0, st.Size()))
}

// DecodeBytes decodes a BMP file held in memory.
func DecodeBytes(data []byte) (*Image, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader decodes a BMP file from any random-access source. Readers
// with a Size method, such as *bytes.Reader and *io.SectionReader, have
// impossible lengths rejected before anything is allocated. Other readers
// are read in 1 MiB chunks, so a truncated file fails after at most one
// chunk beyond its real length.
func DecodeReader(r io.ReaderAt) (*Image, error) {
	src := newSource(r)
	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	l := newRowLayout(h)

	var pal []color.RGBA
	var masks ChannelMasks
	if h.Paletted() {
		if pal, err = readPalette(src, h); err != nil {
			return nil, err
		}
	} else if masks, err = resolveMasks(src, h); err != nil {
		return nil, err
	}

	data, err := src.read(int64(h.File.PixelOffset), l.size())
	if err != nil {
		return nil, err
	}

	img := &Image{width: l.width, height: l.height}
	if h.Paletted() {
		img.pix = decodePaletted(data, l, uint(h.Info.BitsPerPixel), pal)
	} else {
		img.pix = decodeDirect(data, l, int(h.Info.BitsPerPixel), masks)
	}
	return img, nil
}

// DecodeHeader parses and validates the headers of the BMP file at path
// without decoding pixels.
func DecodeHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, errors.Wrap(ErrFileUnreadable, err.Error())
	}
	defer f.Close()
	return parseHeader(newSource(f))
}

// DecodeHeaderBytes is DecodeHeader for a file held in memory.
func DecodeHeaderBytes(data []byte) (Header, error) {
	return parseHeader(newSource(bytes.NewReader(data)))
}
