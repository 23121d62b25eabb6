package cluster

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/common"
)

func preparedGrid(t *testing.T, config Config) Grid {
	t.Helper()
	grid := NewGrid(config)
	view := make([]float32, 16)
	common.Identity(view)
	proj := make([]float32, 16)
	common.Perspective(proj, math32.Pi/4, 16.0/9.0, config.NearPlane, config.FarPlane)
	grid.SetViewProjection(view, proj, 1920, 1080, config.NearPlane, config.FarPlane)
	assert.True(t, grid.Update())
	return grid
}

func identityView() []float32 {
	view := make([]float32, 16)
	common.Identity(view)
	return view
}

func TestCPUCullerZeroLightsWritesEmptyGrid(t *testing.T) {
	config := NewConfig()
	grid := preparedGrid(t, config)
	culler := NewCPUCuller(config, WithWorkerCount(1))
	lights := NewLightBuffers(config)
	view := identityView()

	// Populate state with one light first so a later zero-light pass has
	// stale data to overwrite.
	lights.AddPointLight([3]float32{0, 0, -20}, 10, [3]float32{1, 1, 1}, 1)
	assert.NoError(t, culler.Cull(grid, lights, view))
	gridOut, indices, ok := culler.HostResults()
	assert.True(t, ok)
	assert.NotEmpty(t, indices)

	lights.ClearLights()
	assert.NoError(t, culler.Cull(grid, lights, view))
	gridOut, indices, ok = culler.HostResults()
	assert.True(t, ok)
	assert.Len(t, gridOut, config.TotalClusters())
	assert.Empty(t, indices)
	for i, entry := range gridOut {
		assert.Equal(t, GPULightGrid{}, entry, "cluster %d", i)
	}
}

func TestCPUCullerPointLightLocality(t *testing.T) {
	config := NewConfig()
	grid := preparedGrid(t, config)
	culler := NewCPUCuller(config, WithWorkerCount(1))
	lights := NewLightBuffers(config)

	// A small light in the middle of the depth range touches some clusters
	// but never all of them.
	lights.AddPointLight([3]float32{0, 0, -30}, 3, [3]float32{1, 1, 1}, 1)
	assert.NoError(t, culler.Cull(grid, lights, identityView()))

	gridOut, indices, ok := culler.HostResults()
	assert.True(t, ok)

	populated := 0
	for _, entry := range gridOut {
		populated += int(entry.Count)
	}
	assert.NotZero(t, populated, "light must land in at least one cluster")
	assert.Less(t, populated, config.TotalClusters(), "small light must not touch every cluster")
	for _, idx := range indices {
		assert.Zero(t, idx&SpotLightTag, "point light index must not carry the spot tag")
	}
}

func TestCPUCullerGridSliceContinuity(t *testing.T) {
	config := NewConfig()
	grid := preparedGrid(t, config)
	culler := NewCPUCuller(config, WithWorkerCount(1))
	lights := NewLightBuffers(config)

	lights.AddPointLight([3]float32{0, 0, -10}, 8, [3]float32{1, 1, 1}, 1)
	lights.AddPointLight([3]float32{5, 2, -40}, 12, [3]float32{1, 0, 0}, 1)
	lights.AddSpotLight([3]float32{0, 5, -20}, 30, [3]float32{0, -1, 0}, 0.9, 0.95, [3]float32{0, 1, 0}, 1)
	assert.NoError(t, culler.Cull(grid, lights, identityView()))

	gridOut, indices, ok := culler.HostResults()
	assert.True(t, ok)

	// Non-empty entries tile the index array contiguously in cluster order.
	next := uint32(0)
	for i, entry := range gridOut {
		if entry.Count == 0 {
			continue
		}
		assert.Equal(t, next, entry.Offset, "cluster %d", i)
		next += entry.Count
	}
	assert.Equal(t, int(next), len(indices))
}

func TestCPUCullerSpotTagging(t *testing.T) {
	config := NewConfig()
	grid := preparedGrid(t, config)
	culler := NewCPUCuller(config, WithWorkerCount(1))
	lights := NewLightBuffers(config)

	lights.AddSpotLight([3]float32{0, 0, -25}, 20, [3]float32{0, 0, -1}, 0.8, 0.9, [3]float32{1, 1, 1}, 1)
	assert.NoError(t, culler.Cull(grid, lights, identityView()))

	_, indices, ok := culler.HostResults()
	assert.True(t, ok)
	assert.NotEmpty(t, indices)
	for _, idx := range indices {
		assert.Equal(t, SpotLightTag, idx&SpotLightTag, "spot light index must carry the tag")
		assert.Zero(t, idx&^SpotLightTag, "low bits index the spot array")
	}
}

func TestCPUCullerPerClusterCap(t *testing.T) {
	config := NewConfig(WithMaxLightsPerCluster(4), WithMaxTotalLights(32))
	grid := preparedGrid(t, config)
	culler := NewCPUCuller(config, WithWorkerCount(1))
	lights := NewLightBuffers(config)

	// Stack more overlapping lights than one cluster can hold; the excess is
	// silently dropped, never an error.
	for i := 0; i < 16; i++ {
		lights.AddPointLight([3]float32{0, 0, -30}, 50, [3]float32{1, 1, 1}, 1)
	}
	assert.NoError(t, culler.Cull(grid, lights, identityView()))

	gridOut, _, ok := culler.HostResults()
	assert.True(t, ok)
	for i, entry := range gridOut {
		assert.LessOrEqual(t, entry.Count, uint32(4), "cluster %d", i)
	}
}

func TestCPUCullerParallelMatchesSerial(t *testing.T) {
	config := NewConfig()
	grid := preparedGrid(t, config)
	lights := NewLightBuffers(config)
	for i := 0; i < 40; i++ {
		x := float32(i%8)*6 - 20
		z := -float32(i%10)*9 - 5
		lights.AddPointLight([3]float32{x, 0, z}, 10, [3]float32{1, 1, 1}, 1)
	}

	serial := NewCPUCuller(config, WithWorkerCount(1))
	assert.NoError(t, serial.Cull(grid, lights, identityView()))
	serialGrid, serialIndices, _ := serial.HostResults()

	parallel := NewCPUCuller(config, WithWorkerCount(4))
	defer parallel.Release()
	assert.NoError(t, parallel.Cull(grid, lights, identityView()))
	parallelGrid, parallelIndices, _ := parallel.HostResults()

	assert.Equal(t, serialGrid, parallelGrid)
	assert.Equal(t, serialIndices, parallelIndices)
}

func TestLightBuffersCapacity(t *testing.T) {
	config := NewConfig(WithMaxTotalLights(2))
	lights := NewLightBuffers(config)

	for i := 0; i < 5; i++ {
		lights.AddPointLight([3]float32{float32(i), 0, 0}, 1, [3]float32{1, 1, 1}, 1)
		lights.AddSpotLight([3]float32{float32(i), 0, 0}, 1, [3]float32{0, 0, -1}, 0.8, 0.9, [3]float32{1, 1, 1}, 1)
	}
	assert.Len(t, lights.PointLights(), 2)
	assert.Len(t, lights.SpotLights(), 2)

	lights.ClearLights()
	assert.Empty(t, lights.PointLights())
	assert.Empty(t, lights.SpotLights())
}

func TestSphereIntersectsAABB(t *testing.T) {
	aabb := GPUClusterAABB{Min: [3]float32{-1, -1, -5}, Max: [3]float32{1, 1, -3}}

	inside := culledSphere{center: [3]float32{0, 0, -4}, radius: 0.1}
	assert.True(t, sphereIntersectsAABB(&inside, &aabb))

	touching := culledSphere{center: [3]float32{3, 0, -4}, radius: 2}
	assert.True(t, sphereIntersectsAABB(&touching, &aabb))

	outside := culledSphere{center: [3]float32{3, 0, -4}, radius: 1.5}
	assert.False(t, sphereIntersectsAABB(&outside, &aabb))
}
