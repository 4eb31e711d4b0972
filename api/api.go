package api

import (
	"bytes"
	"image"
	"image/png"
	"sort"

	"github.com/disintegration/gift"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/bmpkit/bmp"
)

// MaxPNGScale bounds the upscaling factor of BMPToPNG.
const MaxPNGScale = 64

// DecodeToRGBA decodes a BMP file held in memory and returns its pixels as
// top-down RGBA bytes, four per pixel, ready for a canvas or texture upload.
func DecodeToRGBA(data []byte) (width, height int, pix []byte, err error) {
	img, err := bmp.DecodeBytes(data)
	if err != nil {
		return 0, 0, nil, err
	}
	return img.Width(), img.Height(), img.ToNRGBA().Pix, nil
}

// BMPToGLB takes BMP file bytes and returns .glb bytes holding the sprite as
// a flat greedy-meshed quad set.
func BMPToGLB(data []byte) ([]byte, error) {
	img, err := bmp.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return encodeGLB(SpriteDocument("Sprite", img, bmp.MeshOptions{}))
}

// PackToGLB converts .bmppack bytes into .glb bytes, one node per entry.
func PackToGLB(packBytes []byte) ([]byte, error) {
	pack, _, err := bmp.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	doc, err := PackDocument(pack, bmp.MeshOptions{})
	if err != nil {
		return nil, err
	}
	return encodeGLB(doc)
}

func encodeGLB(doc *gltf.Document) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode glb")
	}
	return out.Bytes(), nil
}

// ScaleImage enlarges img by an integer factor with nearest-neighbour
// sampling so pixel art stays sharp.
func ScaleImage(img image.Image, scale int) (image.Image, error) {
	if scale < 1 || scale > MaxPNGScale {
		return nil, errors.Errorf("scale %d out of range [1, %d]", scale, MaxPNGScale)
	}
	if scale == 1 {
		return img, nil
	}
	b := img.Bounds()
	g := gift.New(gift.Resize(b.Dx()*scale, b.Dy()*scale, gift.NearestNeighborResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst, nil
}

// BMPToPNG converts BMP file bytes to PNG bytes, enlarged by scale.
func BMPToPNG(data []byte, scale int) ([]byte, error) {
	img, err := bmp.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	scaled, err := ScaleImage(img.ToNRGBA(), scale)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, scaled); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return out.Bytes(), nil
}

// PackBMPs builds a raw-layout .bmppack from named BMP blobs. Entries are
// sorted by name so the same inputs always give the same bytes.
func PackBMPs(files map[string][]byte, comp bmp.PackCompression) ([]byte, error) {
	return PackBMPsLayout(files, bmp.LayoutRaw, comp)
}

// PackBMPsLayout is PackBMPs with an explicit content layout.
func PackBMPsLayout(files map[string][]byte, layout bmp.PackLayout, comp bmp.PackCompression) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	pack := &bmp.Pack{Entries: make([]bmp.PackEntry, 0, len(names))}
	for _, name := range names {
		e, err := bmp.NewPackEntry(name, files[name])
		if err != nil {
			return nil, err
		}
		pack.Entries = append(pack.Entries, e)
	}
	return pack.MarshalEx(layout, comp)
}

// UnpackBMPPACKToMemory returns a map of file name -> BMP bytes from a
// .bmppack blob.
func UnpackBMPPACKToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := bmp.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}

// ParseCompression maps a codec name (none, zlib, zstd) to its pack value.
func ParseCompression(s string) (bmp.PackCompression, bool) {
	for _, c := range []bmp.PackCompression{bmp.PackCompNone, bmp.PackCompZlib, bmp.PackCompZstd} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// ParseLayout maps a layout name (raw, cdc) to its pack value.
func ParseLayout(s string) (bmp.PackLayout, bool) {
	for _, l := range []bmp.PackLayout{bmp.LayoutRaw, bmp.LayoutCDC} {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}
