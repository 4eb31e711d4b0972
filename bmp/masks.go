package bmp

// ChannelMasks isolates the color channels of a 16, 24 or 32-bit pixel. Each
// shift right-aligns the bits selected by its mask.
type ChannelMasks struct {
	Red, Green, Blue, Alpha                     uint32
	RedShift, GreenShift, BlueShift, AlphaShift uint8
}

var (
	defaultMasks16 = ChannelMasks{Red: 0x7C00, Green: 0x03E0, Blue: 0x001F, Alpha: 0x8000}
	defaultMasks24 = ChannelMasks{Red: 0xFF0000, Green: 0x00FF00, Blue: 0x0000FF}
	defaultMasks32 = ChannelMasks{Red: 0x00FF0000, Green: 0x0000FF00, Blue: 0x000000FF, Alpha: 0xFF000000}
)

// lowestSetBit returns the index of the lowest set bit of mask, or 0 for a
// zero mask.
func lowestSetBit(mask uint32) uint8 {
	if mask == 0 {
		return 0
	}
	var n uint8
	for mask&1 == 0 {
		mask >>= 1
		n++
	}
	return n
}

func (m ChannelMasks) withShifts() ChannelMasks {
	m.RedShift = lowestSetBit(m.Red)
	m.GreenShift = lowestSetBit(m.Green)
	m.BlueShift = lowestSetBit(m.Blue)
	m.AlphaShift = lowestSetBit(m.Alpha)
	return m
}

// resolveMasks picks the channel masks for a direct-color image.
func resolveMasks(src source, h Header) (ChannelMasks, error) {
	var m ChannelMasks
	switch h.Info.BitsPerPixel {
	case 24:
		return defaultMasks24.withShifts(), nil
	case 16:
		m = defaultMasks16
	case 32:
		m = defaultMasks32
	}

	info := h.Info
	switch info.Compression {
	case BI_RGB:
		if info.Size >= InfoHeaderV3 {
			m.Alpha = info.AlphaMask
		}
	case BI_BITFIELDS:
		if info.Size == InfoHeaderV1 {
			// Masks follow the header where a V2/V3 header would keep them.
			// A 32-bit file carries a fourth, alpha, word when the pixel data
			// starts late enough to leave room for it.
			n := 12
			if info.BitsPerPixel == 32 && h.File.PixelOffset >= fileHeaderLen+InfoHeaderV3 {
				n = 16
			}
			b, err := src.read(fileHeaderLen+InfoHeaderV1, n)
			if err != nil {
				return m, err
			}
			m = ChannelMasks{Red: u32(b[0:]), Green: u32(b[4:]), Blue: u32(b[8:])}
			if n == 16 {
				m.Alpha = u32(b[12:])
			}
		} else {
			m = ChannelMasks{Red: info.RedMask, Green: info.GreenMask, Blue: info.BlueMask, Alpha: info.AlphaMask}
		}
	}
	return m.withShifts(), nil
}
