package geom

// MeshData is flattened, GPU-ready geometry. Attribute arrays are indexed by
// vertex: Positions holds 3 floats per vertex, TexCoords 2 and Normals 3.
// TexCoords and Normals may be empty for geometry that does not carry them.
type MeshData struct {
	Positions []float32
	TexCoords []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices described by Positions.
func (m *MeshData) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles described by Indices.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}
