package cluster

// LightCuller assigns lights to clusters for one frame. Two implementations
// share the contract: a CPU path (the portable default) and a GPU compute path
// (opt-in, faster). Both produce equivalent per-cluster light index sets from
// the same inputs and feed the same shading-stage buffer contract, so the
// frame owner can swap them at initialization without touching the shading
// code. The path is selected once at init and never mixed mid-session.
type LightCuller interface {
	// Cull runs the culling pass for the current frame. It always writes a
	// valid (possibly empty) light grid, even with zero lights; skipping the
	// pass would leave a previous frame's grid bound to the shading stage.
	//
	// Parameters:
	//   - grid: the cluster grid, already updated for this frame
	//   - lights: the frame's packed light arrays
	//   - view: column-major camera view matrix used to move lights into view space
	//
	// Returns:
	//   - error: an error if the pass could not run; the caller skips the frame
	Cull(grid Grid, lights LightBuffers, view []float32) error

	// HostResults returns the CPU-visible culling output, when the
	// implementation produces one. The GPU compute path writes directly into
	// GPU storage and reports ok=false; the frame owner then skips the host
	// upload it would otherwise perform.
	//
	// Returns:
	//   - []GPULightGrid: per-cluster {offset, count} entries
	//   - []uint32: the dense tagged light index array
	//   - bool: false when results live only on the GPU
	HostResults() ([]GPULightGrid, []uint32, bool)

	// Release frees any GPU resources held by the culler.
	Release()
}

// culledSphere is a light reduced to its view-space bounding sphere plus the
// tagged index it contributes to the light index array.
type culledSphere struct {
	center [3]float32
	radius float32
	tag    uint32
}

// sphereIntersectsAABB clamps the sphere center to the box and compares the
// squared distance to the squared radius. Mirrors the WGSL test exactly.
func sphereIntersectsAABB(s *culledSphere, aabb *GPUClusterAABB) bool {
	var d2 float32
	for i := 0; i < 3; i++ {
		c := s.center[i]
		if c < aabb.Min[i] {
			d := aabb.Min[i] - c
			d2 += d * d
		} else if c > aabb.Max[i] {
			d := c - aabb.Max[i]
			d2 += d * d
		}
	}
	return d2 <= s.radius*s.radius
}
