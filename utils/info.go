package utils

import (
	"fmt"
	"io"

	"github.com/voxelsplace/bmpkit/bmp"
)

// RunInfo prints the header metadata of a .bmp in human-readable form,
// followed by the checksum of its decoded pixels.
func RunInfo(path string, w io.Writer) error {
	h, err := bmp.DecodeHeader(path)
	if err != nil {
		return err
	}
	info := h.Info
	fmt.Fprintf(w, "File:        \t%s\n", path)
	fmt.Fprintf(w, "FileSize:    \t%d bytes\n", h.File.FileSize)
	fmt.Fprintf(w, "Header:      \t%s (%d bytes)\n", h.Version(), info.Size)
	fmt.Fprintf(w, "Width:       \t%d px\n", h.Width())
	fmt.Fprintf(w, "Height:      \t%d px\n", h.Height())
	orientation := "bottom-up"
	if h.TopDown() {
		orientation = "top-down"
	}
	fmt.Fprintf(w, "Orientation: \t%s\n", orientation)
	fmt.Fprintf(w, "BitCount:    \t%d bits\n", info.BitsPerPixel)
	fmt.Fprintf(w, "Compression: \t%s\n", bmp.CompressionName(info.Compression))
	fmt.Fprintf(w, "PixelOffset: \t%d bytes\n", h.File.PixelOffset)
	if h.Paletted() {
		fmt.Fprintf(w, "Palette:     \t%d colors\n", h.PaletteLen())
	} else if info.Compression == bmp.BI_BITFIELDS {
		fmt.Fprintf(w, "Masks:       \tR=%08x G=%08x B=%08x A=%08x\n", info.RedMask, info.GreenMask, info.BlueMask, info.AlphaMask)
	}

	img, err := bmp.Decode(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Alpha:       \t%t\n", img.HasAlpha())
	fmt.Fprintf(w, "Checksum:    \t%016x\n", img.Checksum())
	return nil
}

// coloredBlock paints block with a 24-bit ANSI background color.
func coloredBlock(block string, r, g, b uint8) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm%s\033[0m", r, g, b, block)
}

// RunShow prints the image to a true-color terminal, two columns per pixel,
// top row first. Fully transparent pixels are left blank. Use for small
// images only.
func RunShow(path string, w io.Writer) error {
	img, err := bmp.Decode(path)
	if err != nil {
		return err
	}
	opaque := !img.HasAlpha()
	for row := img.Height() - 1; row >= 0; row-- {
		for col := 0; col < img.Width(); col++ {
			p := img.At(col, row)
			if !opaque && p.A == 0 {
				fmt.Fprint(w, "  ")
				continue
			}
			fmt.Fprint(w, coloredBlock("  ", p.R, p.G, p.B))
		}
		fmt.Fprintln(w)
	}
	return nil
}
