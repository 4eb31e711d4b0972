package utils

import (
	"os"

	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/bmpkit/api"
	"github.com/voxelsplace/bmpkit/bmp"
)

// RunPACK2GLB converts a .bmppack into a .glb.
// It creates one glTF Mesh/Node per entry in the pack and lays them out on a
// grid in a single scene.
func RunPACK2GLB(inPackPath, outGlbPath string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return err
	}
	pack, comp, err := bmp.UnmarshalPack(data)
	if err != nil {
		return err
	}
	Logger.Debug("pack loaded", "path", inPackPath, "entries", len(pack.Entries), "compression", comp)

	doc, err := api.PackDocument(pack, bmp.MeshOptions{})
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, outGlbPath); err != nil {
		return err
	}
	Logger.Info("glb saved", "path", outGlbPath, "nodes", len(doc.Nodes))
	return nil
}
