package utils

import (
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/bmpkit/api"
	"github.com/voxelsplace/bmpkit/bmp"
)

// RunBMP2GLB converts a .bmp into a .glb using the greedy sprite mesh.
func RunBMP2GLB(inPath, outPath string, opts bmp.MeshOptions) error {
	img, err := bmp.Decode(inPath)
	if err != nil {
		return err
	}
	doc := api.SpriteDocument(filepath.Base(inPath), img, opts)
	if err := gltf.SaveBinary(doc, outPath); err != nil {
		return err
	}
	Logger.Info("glb saved", "path", outPath, "meshes", len(doc.Meshes))
	return nil
}
