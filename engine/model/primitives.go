package model

// NewCubeModel creates a unit-extent cube mesh centered at the origin with
// per-face normals, scaled by half-extent.
//
// Parameters:
//   - name: the model identifier
//   - halfExtent: half the cube edge length in model units
//
// Returns:
//   - Model: the cube model
func NewCubeModel(name string, halfExtent float32) Model {
	h := halfExtent
	faces := [6]struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range faces {
		base := uint32(len(vertices))
		for i, corner := range face.corners {
			vertices = append(vertices, GPUVertex{
				Position: corner,
				Normal:   face.normal,
				TexCoord: uvs[i],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewMeshModel(name, vertices, indices)
}

// NewPlaneModel creates a flat quad in the XZ plane centered at the origin,
// facing +Y.
//
// Parameters:
//   - name: the model identifier
//   - halfExtent: half the plane edge length in model units
//
// Returns:
//   - Model: the plane model
func NewPlaneModel(name string, halfExtent float32) Model {
	h := halfExtent
	up := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-h, 0, h}, Normal: up, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, 0, h}, Normal: up, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{h, 0, -h}, Normal: up, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-h, 0, -h}, Normal: up, TexCoord: [2]float32{0, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	return NewMeshModel(name, vertices, indices)
}
