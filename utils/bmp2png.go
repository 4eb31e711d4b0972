package utils

import (
	"os"

	"github.com/pkg/errors"
	"github.com/voxelsplace/bmpkit/api"
)

// RunBMP2PNG converts a .bmp file into a .png, enlarged by scale.
func RunBMP2PNG(inPath, outPath string, scale int) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "read bmp")
	}
	out, err := api.BMPToPNG(data, scale)
	if err != nil {
		return errors.Wrap(err, inPath)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	Logger.Info("png saved", "path", outPath, "bytes", len(out), "scale", scale)
	return nil
}
