package cluster

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/radiant-engine/radiant/common"
)

// cpuCullerImpl is the unexported implementation of the CPU culling path.
//
// The per-cluster loop fans out across depth slices on a reusable worker pool;
// each slice writes into its own stride of the scratch array so workers never
// share cluster state. A serial compaction pass then packs the scratch strides
// into the dense light index array. Workers are internal to one synchronous
// Cull call, so the public pipeline stays single-render-thread.
type cpuCullerImpl struct {
	config Config

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int

	// view-space spheres for this call, points first then spots so the dense
	// index order matches the GPU path's loop order
	spheres []culledSphere

	// scratch[idx*MaxLightsPerCluster:...] holds cluster idx's matches before compaction
	scratch []uint32
	counts  []uint32

	lightGrid    []GPULightGrid
	lightIndices []uint32
}

// Compile-time check that cpuCullerImpl implements LightCuller
var _ LightCuller = &cpuCullerImpl{}

// NewCPUCuller creates the CPU light culling path. All working memory is
// allocated once from the configuration and reused across frames.
//
// Parameters:
//   - config: the cluster configuration
//   - options: a variadic list of options to configure the culler
//
// Returns:
//   - LightCuller: the CPU culling path
func NewCPUCuller(config Config, options ...CPUCullerOption) LightCuller {
	c := &cpuCullerImpl{
		config:       config,
		workers:      min(config.ClusterZ, runtime.NumCPU()),
		spheres:      make([]culledSphere, 0, config.MaxTotalLights*2),
		scratch:      make([]uint32, config.MaxLightIndices()),
		counts:       make([]uint32, config.TotalClusters()),
		lightGrid:    make([]GPULightGrid, config.TotalClusters()),
		lightIndices: make([]uint32, 0, config.MaxLightIndices()),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.workers > 1 {
		c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	}
	return c
}

// CPUCullerOption is a functional option applied to a CPU culler during construction via NewCPUCuller.
type CPUCullerOption func(*cpuCullerImpl)

// WithWorkerCount sets the number of pool workers the culling loop fans out
// across. A count of 1 runs the loop inline without a pool.
//
// Parameters:
//   - workers: the worker count; values < 1 are ignored
//
// Returns:
//   - CPUCullerOption: a function that applies the worker count to the culler
func WithWorkerCount(workers int) CPUCullerOption {
	return func(c *cpuCullerImpl) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

func (c *cpuCullerImpl) Cull(grid Grid, lights LightBuffers, view []float32) error {
	aabbs := grid.AABBs()
	c.transformLights(lights, view)

	for i := range c.counts {
		c.counts[i] = 0
	}

	cx, cy, cz := c.config.ClusterX, c.config.ClusterY, c.config.ClusterZ
	clustersPerSlice := cx * cy

	if len(c.spheres) > 0 {
		if c.pool != nil {
			var wg sync.WaitGroup
			for z := 0; z < cz; z++ {
				wg.Add(1)
				start := z * clustersPerSlice
				id := c.taskID
				c.taskID++
				c.pool.SubmitTask(worker.Task{
					ID: id,
					Do: func() (any, error) {
						defer wg.Done()
						c.cullRange(aabbs, start, start+clustersPerSlice)
						return nil, nil
					},
				})
			}
			wg.Wait()
		} else {
			c.cullRange(aabbs, 0, len(aabbs))
		}
	}

	// Serial compaction: pack each cluster's scratch stride into a contiguous
	// span of the dense index array. Runs even with zero lights so every grid
	// entry is rewritten and no stale spans survive the frame.
	c.lightIndices = c.lightIndices[:0]
	offset := uint32(0)
	maxPer := c.config.MaxLightsPerCluster
	for idx := range c.lightGrid {
		count := c.counts[idx]
		if count == 0 {
			c.lightGrid[idx] = GPULightGrid{}
			continue
		}
		base := idx * maxPer
		c.lightGrid[idx] = GPULightGrid{Offset: offset, Count: count}
		c.lightIndices = append(c.lightIndices, c.scratch[base:base+int(count)]...)
		offset += count
	}

	return nil
}

// transformLights rebuilds the view-space sphere list for this call. Point
// light spheres are the light's own radius; spot lights use the conservative
// bounding sphere around the cone, accepting false positives but never false
// negatives.
func (c *cpuCullerImpl) transformLights(lights LightBuffers, view []float32) {
	c.spheres = c.spheres[:0]

	for i, l := range lights.PointLights() {
		center := common.TransformPoint3(view, l.Position[0], l.Position[1], l.Position[2])
		c.spheres = append(c.spheres, culledSphere{
			center: center,
			radius: l.LightRange,
			tag:    uint32(i),
		})
	}

	for i, l := range lights.SpotLights() {
		apex := common.TransformPoint3(view, l.Position[0], l.Position[1], l.Position[2])
		dir := common.TransformDir3(view, l.Direction[0], l.Direction[1], l.Direction[2])

		halfRange := l.LightRange * 0.5
		outerCos := l.OuterCos
		if outerCos < 0.01 {
			outerCos = 0.01
		}
		radius := halfRange / outerCos
		if maxR := l.LightRange * 2; radius > maxR {
			radius = maxR
		}

		c.spheres = append(c.spheres, culledSphere{
			center: [3]float32{
				apex[0] + dir[0]*halfRange,
				apex[1] + dir[1]*halfRange,
				apex[2] + dir[2]*halfRange,
			},
			radius: radius,
			tag:    uint32(i) | SpotLightTag,
		})
	}
}

// cullRange tests every sphere against the clusters in [start, end), writing
// matches into each cluster's scratch stride up to the per-cluster cap.
// Lights past the cap are silently dropped for that cluster.
func (c *cpuCullerImpl) cullRange(aabbs []GPUClusterAABB, start, end int) {
	maxPer := c.config.MaxLightsPerCluster
	for idx := start; idx < end; idx++ {
		aabb := &aabbs[idx]
		base := idx * maxPer
		count := 0
		for s := range c.spheres {
			if count >= maxPer {
				break
			}
			if sphereIntersectsAABB(&c.spheres[s], aabb) {
				c.scratch[base+count] = c.spheres[s].tag
				count++
			}
		}
		c.counts[idx] = uint32(count)
	}
}

func (c *cpuCullerImpl) HostResults() ([]GPULightGrid, []uint32, bool) {
	return c.lightGrid, c.lightIndices, true
}

func (c *cpuCullerImpl) Release() {
	// Pool workers idle-exit on their own; nothing to free.
}
