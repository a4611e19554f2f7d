package model

// DrawRange locates one mesh inside a FlatScene.
type DrawRange struct {
	// Mesh is the index of the source mesh in Scene.Meshes.
	Mesh int

	// FirstIndex is the offset of the mesh's first index in FlatScene.Indices.
	FirstIndex int

	// IndexCount is the number of indices belonging to the mesh.
	IndexCount int

	// BaseVertex is the offset of the mesh's first vertex in the interleaved vertex data.
	BaseVertex int

	// Material indexes Scene.Materials, or is NoMaterial.
	Material int

	Topology Topology
}

// FlatScene is the concatenated form of a Scene: one interleaved vertex buffer and one
// index buffer for every mesh, plus the per-mesh ranges needed to draw them.
type FlatScene struct {
	// Vertices is interleaved vertex data, VertexStride bytes per vertex.
	Vertices []byte

	// Indices are rebased so that they address Vertices directly.
	Indices []uint32

	// Draws holds one range per mesh, in mesh order.
	Draws []DrawRange
}

// VertexCount returns the number of vertices across all meshes.
func (s *Scene) VertexCount() int {
	n := 0
	for i := range s.Meshes {
		n += len(s.Meshes[i].Vertices)
	}
	return n
}

// IndexCount returns the number of indices across all meshes.
func (s *Scene) IndexCount() int {
	n := 0
	for i := range s.Meshes {
		n += len(s.Meshes[i].Indices)
	}
	return n
}

// Flatten combines all meshes into one vertex buffer and one index buffer.
// Each mesh's indices are offset by the running vertex count of the meshes before it,
// so the result can be uploaded as a single pair of GPU buffers.
//
// Returns:
//   - *FlatScene: the combined buffers and per-mesh draw ranges
func (s *Scene) Flatten() *FlatScene {
	flat := &FlatScene{
		Vertices: make([]byte, s.VertexCount()*VertexStride),
		Indices:  make([]uint32, 0, s.IndexCount()),
		Draws:    make([]DrawRange, 0, len(s.Meshes)),
	}

	baseVertex := 0
	for i := range s.Meshes {
		mesh := &s.Meshes[i]

		for j := range mesh.Vertices {
			off := (baseVertex + j) * VertexStride
			mesh.Vertices[j].Marshal(flat.Vertices[off : off+VertexStride])
		}

		flat.Draws = append(flat.Draws, DrawRange{
			Mesh:       i,
			FirstIndex: len(flat.Indices),
			IndexCount: len(mesh.Indices),
			BaseVertex: baseVertex,
			Material:   mesh.Material,
			Topology:   mesh.Topology,
		})

		// Reindex: offset each index by the running vertex count across meshes
		for _, idx := range mesh.Indices {
			flat.Indices = append(flat.Indices, idx+uint32(baseVertex))
		}

		baseVertex += len(mesh.Vertices)
	}

	return flat
}
