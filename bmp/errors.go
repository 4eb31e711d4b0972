package bmp

import "github.com/pkg/errors"

// Decode failures. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrFileUnreadable           = errors.New("bmp: file unreadable")
	ErrInvalidMagic             = errors.New("bmp: invalid magic")
	ErrUnsupportedHeaderVersion = errors.New("bmp: unsupported header version")
	ErrUnsupportedCompression   = errors.New("bmp: unsupported compression")
	ErrUnsupportedColorSpace    = errors.New("bmp: unsupported color space")
	ErrUnsupportedBitDepth      = errors.New("bmp: unsupported bit depth")
	ErrInvalidDimensions        = errors.New("bmp: invalid dimensions")
)
