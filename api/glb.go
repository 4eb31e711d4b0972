package api

import (
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxelsplace/bmpkit/bmp"
)

// newSpriteDocument starts a glTF document with the single material every
// sprite mesh shares. Colors come from the per-vertex COLOR_0 attribute.
func newSpriteDocument(generator string, blend bool) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque, DoubleSided: true}
	if blend {
		material.AlphaMode = gltf.AlphaBlend
	}
	doc.Materials = []*gltf.Material{material}
	return doc
}

// addSprite meshes img and appends it to doc as a named node placed at
// translation.
func addSprite(doc *gltf.Document, name string, img *bmp.Image, opts bmp.MeshOptions, translation [3]float32) {
	mesh := bmp.GenerateSpriteMesh(img, opts)
	if len(mesh.Indices) == 0 {
		return
	}
	opaque := !img.HasAlpha()

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = v.Position
		// all quads lie in the z=0 plane facing +z
		normals[i] = [3]float32{0, 0, 1}
		a := float32(v.Color.A) / 255
		if opaque {
			a = 1
		}
		colors[i] = [4]float32{float32(v.Color.R) / 255, float32(v.Color.G) / 255, float32(v.Color.B) / 255, a}
	}
	indices := make([]uint32, len(mesh.Indices))
	copy(indices, mesh.Indices)

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}

	m := &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}}
	doc.Meshes = append(doc.Meshes, m)
	node := &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)), Translation: translation}
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
}

// SpriteDocument builds a glTF scene holding one sprite mesh.
func SpriteDocument(name string, img *bmp.Image, opts bmp.MeshOptions) *gltf.Document {
	doc := newSpriteDocument("BMP -> GLB", img.HasAlpha())
	addSprite(doc, name, img, opts, [3]float32{})
	return doc
}

// PackDocument builds a glTF scene with one node per pack entry. Entries are
// arranged on a square grid, each cell as large as the largest sprite, so
// they never overlap.
func PackDocument(pack *bmp.Pack, opts bmp.MeshOptions) (*gltf.Document, error) {
	n := len(pack.Entries)
	if n == 0 {
		return nil, errors.New("empty pack")
	}
	imgs := make([]*bmp.Image, n)
	var cellW, cellH int
	blend := false
	for i, e := range pack.Entries {
		img, err := e.Decode()
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d (%s)", i, e.Name)
		}
		imgs[i] = img
		cellW = max(cellW, img.Width())
		cellH = max(cellH, img.Height())
		blend = blend || img.HasAlpha()
	}

	doc := newSpriteDocument("BMPPACK -> GLB", blend)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	for i, img := range imgs {
		r, c := i/cols, i%cols
		t := [3]float32{float32(c * cellW), float32(r * cellH), 0}
		addSprite(doc, filepath.Base(pack.Entries[i].Name), img, opts, t)
	}
	return doc, nil
}
