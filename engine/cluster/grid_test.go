package cluster

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/common"
)

func testViewProj(near, far float32) ([]float32, []float32) {
	view := make([]float32, 16)
	common.Identity(view)
	proj := make([]float32, 16)
	common.Perspective(proj, math32.Pi/4, 16.0/9.0, near, far)
	return view, proj
}

func TestGridDefaultDimensions(t *testing.T) {
	config := NewConfig()
	assert.Equal(t, 16, config.ClusterX)
	assert.Equal(t, 9, config.ClusterY)
	assert.Equal(t, 24, config.ClusterZ)
	assert.Equal(t, 3456, config.TotalClusters())
	assert.Equal(t, 3456*128, config.MaxLightIndices())

	grid := NewGrid(config)
	assert.Len(t, grid.AABBs(), 3456)
}

func TestGridDirtyTracking(t *testing.T) {
	grid := NewGrid(NewConfig())
	view, proj := testViewProj(0.1, 100)

	// No camera state yet, nothing to recompute.
	assert.False(t, grid.Update())

	grid.SetViewProjection(view, proj, 1920, 1080, 0.1, 100)
	assert.True(t, grid.Update())
	gen := grid.Generation()

	// Identical camera state must not recompute.
	grid.SetViewProjection(view, proj, 1920, 1080, 0.1, 100)
	assert.False(t, grid.Update())
	assert.Equal(t, gen, grid.Generation())

	// A viewport change recomputes and bumps the generation.
	grid.SetViewProjection(view, proj, 1280, 720, 0.1, 100)
	assert.True(t, grid.Update())
	assert.Equal(t, gen+1, grid.Generation())
}

func TestGridSliceDepthBoundsExponential(t *testing.T) {
	config := NewConfig()
	grid := NewGrid(config)
	view, proj := testViewProj(0.1, 100)
	grid.SetViewProjection(view, proj, 1920, 1080, 0.1, 100)
	grid.Update()

	firstNear, _ := grid.SliceDepthBounds(0)
	assert.InDelta(t, 0.1, firstNear, 1e-6)

	_, lastFar := grid.SliceDepthBounds(config.ClusterZ - 1)
	assert.InDelta(t, 100, lastFar, 1e-3)

	// Slices are contiguous and strictly increasing.
	prevFar := firstNear
	for z := 0; z < config.ClusterZ; z++ {
		sliceNear, sliceFar := grid.SliceDepthBounds(z)
		assert.InDelta(t, prevFar, sliceNear, 1e-3, "slice %d", z)
		assert.Greater(t, sliceFar, sliceNear, "slice %d", z)
		prevFar = sliceFar
	}
}

func TestGridAABBsCoverFrustumDepth(t *testing.T) {
	config := NewConfig()
	grid := NewGrid(config)
	view, proj := testViewProj(0.1, 100)
	grid.SetViewProjection(view, proj, 1920, 1080, 0.1, 100)
	assert.True(t, grid.Update())

	cx, cy := config.ClusterX, config.ClusterY
	for z := 0; z < config.ClusterZ; z++ {
		sliceNear, sliceFar := grid.SliceDepthBounds(z)
		for i := 0; i < cx*cy; i++ {
			aabb := grid.AABBs()[z*cx*cy+i]
			// View space looks down -Z, so the slice occupies [-far, -near].
			assert.InDelta(t, -sliceFar, aabb.Min[2], 1e-3)
			assert.InDelta(t, -sliceNear, aabb.Max[2], 1e-3)
			assert.LessOrEqual(t, aabb.Min[0], aabb.Max[0])
			assert.LessOrEqual(t, aabb.Min[1], aabb.Max[1])
		}
	}
}

func TestGridDegenerateProjectionKeepsAABBs(t *testing.T) {
	grid := NewGrid(NewConfig())
	view, proj := testViewProj(0.1, 100)
	grid.SetViewProjection(view, proj, 1920, 1080, 0.1, 100)
	assert.True(t, grid.Update())
	gen := grid.Generation()

	singular := make([]float32, 16)
	grid.SetViewProjection(view, singular, 1920, 1080, 0.1, 100)
	assert.False(t, grid.Update())
	assert.Equal(t, gen, grid.Generation())
}
