// Package terrain generates the flat grid mesh shared by terrain tiles.
package terrain

import "icarus/internal/geom"

const (
	DefaultSize        = 800
	DefaultVertexCount = 128
)

// Generate builds a flat square grid of vertexCount x vertexCount vertices
// spanning size units on X and Z, starting at the origin. Normals point up and
// texcoords run 0..1 across the tile.
func Generate(size float32, vertexCount int) *geom.MeshData {
	if vertexCount < 2 {
		vertexCount = 2
	}
	count := vertexCount * vertexCount
	m := &geom.MeshData{
		Positions: make([]float32, 0, count*3),
		TexCoords: make([]float32, 0, count*2),
		Normals:   make([]float32, 0, count*3),
		Indices:   make([]uint32, 0, 6*(vertexCount-1)*(vertexCount-1)),
	}

	last := float32(vertexCount - 1)
	for i := 0; i < vertexCount; i++ {
		for j := 0; j < vertexCount; j++ {
			u := float32(j) / last
			v := float32(i) / last
			m.Positions = append(m.Positions, u*size, 0, v*size)
			m.Normals = append(m.Normals, 0, 1, 0)
			m.TexCoords = append(m.TexCoords, u, v)
		}
	}

	for gz := 0; gz < vertexCount-1; gz++ {
		for gx := 0; gx < vertexCount-1; gx++ {
			topLeft := uint32(gz*vertexCount + gx)
			topRight := topLeft + 1
			bottomLeft := uint32((gz+1)*vertexCount + gx)
			bottomRight := bottomLeft + 1
			m.Indices = append(m.Indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight)
		}
	}
	return m
}
