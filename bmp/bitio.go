package bmp

// unpackIndex returns the bpp-wide palette index of pixel i in a packed row.
// Indices are packed most significant bits first, so the leftmost pixel of a
// row sits in the high bits of its first byte. bpp is 1, 2, 4 or 8.
func unpackIndex(row []byte, i int, bpp uint) uint8 {
	perByte := 8 / int(bpp)
	slot := i % perByte
	shift := bpp * uint(perByte-1-slot)
	mask := uint(1)<<bpp - 1
	return uint8((uint(row[i/perByte]) >> shift) & mask)
}

// packedPixel assembles the bytes of one direct-color pixel with the first
// byte in the least significant position.
func packedPixel(b []byte) uint32 {
	var v uint32
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}
