package bmp

// extractLE assembles the first width bytes of b (2, 4 or 8) as a little-endian
// unsigned value. The caller guarantees len(b) >= width.
func extractLE(b []byte, width int) uint64 {
	_ = b[width-1] // bounds check hint
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func u16(b []byte) uint16 { return uint16(extractLE(b, 2)) }
func u32(b []byte) uint32 { return uint32(extractLE(b, 4)) }
func u64(b []byte) uint64 { return extractLE(b, 8) }
func i16(b []byte) int16  { return int16(extractLE(b, 2)) }
func i32(b []byte) int32  { return int32(extractLE(b, 4)) }
func i64(b []byte) int64  { return int64(extractLE(b, 8)) }
