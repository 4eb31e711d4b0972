package bmp

import "image/color"

// Vertex is a mesh corner in sprite space: x is the column, y the row
// counted from the bottom, z is always 0.
type Vertex struct {
	Position [3]float32
	Color    color.RGBA
}

// Mesh is an indexed triangle list, two triangles per quad.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// MeshOptions controls GenerateSpriteMesh.
type MeshOptions struct {
	// SkipKey drops pixels equal to Key, the sprite's transparent color.
	SkipKey bool
	Key     color.RGBA
}

func addQuad(mesh *Mesh, col, row, w, h int, c color.RGBA) {
	x0, y0 := float32(col), float32(row)
	x1, y1 := float32(col+w), float32(row+h)
	// counter-clockwise seen from +z
	verts := [4]Vertex{
		{Position: [3]float32{x0, y0, 0}, Color: c},
		{Position: [3]float32{x1, y0, 0}, Color: c},
		{Position: [3]float32{x1, y1, 0}, Color: c},
		{Position: [3]float32{x0, y1, 0}, Color: c},
	}
	base := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
}

// GenerateSpriteMesh covers the image with as few single-colored rectangles
// as the greedy scan finds: runs along a row first, then grown upwards while
// every row above repeats the run.
func GenerateSpriteMesh(img *Image, opts MeshOptions) *Mesh {
	mesh := &Mesh{}
	w, h := img.width, img.height
	visited := make([]bool, w*h)
	skip := func(i int) bool {
		return visited[i] || (opts.SkipKey && img.pix[i] == opts.Key)
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; {
			i := col + row*w
			if skip(i) {
				col++
				continue
			}
			c := img.pix[i]
			width := 1
			for x := col + 1; x < w && !skip(x+row*w) && img.pix[x+row*w] == c; x++ {
				width++
			}
			height := 1
			for y := row + 1; y < h; y++ {
				full := true
				for x := col; x < col+width; x++ {
					j := x + y*w
					if skip(j) || img.pix[j] != c {
						full = false
						break
					}
				}
				if !full {
					break
				}
				height++
			}
			for y := row; y < row+height; y++ {
				for x := col; x < col+width; x++ {
					visited[x+y*w] = true
				}
			}
			addQuad(mesh, col, row, width, height, c)
			col += width
		}
	}
	return mesh
}
