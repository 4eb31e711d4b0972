package api

import (
	"image/color"
	"strconv"

	"github.com/pkg/errors"
)

// ParseKeyColor parses "#rrggbb" or "#rrggbbaa" into the color a sprite
// treats as transparent. Six digits leave alpha at 0, which is how pixels of
// files without an alpha channel decode.
func ParseKeyColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return color.RGBA{}, errors.Errorf("invalid hex color: %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, errors.Errorf("invalid hex color length: %q", hex)
	}
	var c [4]uint8
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.RGBA{}, errors.Wrapf(err, "invalid hex color: %q", hex)
		}
		c[i] = uint8(v)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
