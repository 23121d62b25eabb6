package cluster

import (
	"github.com/chewxy/math32"

	"github.com/radiant-engine/radiant/common"
)

// gridImpl is the unexported implementation of Grid.
type gridImpl struct {
	config Config

	view   [16]float32
	proj   [16]float32
	width  int
	height int
	near   float32
	far    float32

	aabbs      []GPUClusterAABB
	dirty      bool
	generation uint64
}

// Grid owns the cluster AABB array and its dirty tracking. AABBs live in view
// space and are recomputed only when the view matrix, projection matrix, or
// viewport size changes; within a frame they are immutable and shared
// read-only with the culling engine.
type Grid interface {
	// Config returns the cluster configuration the grid was built from.
	//
	// Returns:
	//   - Config: the cluster configuration
	Config() Config

	// SetViewProjection records the active camera state for this frame and
	// marks the grid dirty when anything changed since the last call. Near and
	// far must come from the active camera, not a static default; the depth
	// slice math depends on them.
	//
	// Parameters:
	//   - view: column-major camera view matrix
	//   - proj: column-major camera projection matrix
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//   - near: camera near plane distance
	//   - far: camera far plane distance
	SetViewProjection(view, proj []float32, width, height int, near, far float32)

	// Update recomputes the cluster AABBs if the grid is dirty. A clean grid
	// is a no-op.
	//
	// Returns:
	//   - bool: true if the AABBs were recomputed
	Update() bool

	// AABBs returns the view-space cluster AABB array, indexed by the
	// flattened cluster index z*Cy*Cx + y*Cx + x. The slice is owned by the
	// grid and valid until the next Update that recomputes.
	//
	// Returns:
	//   - []GPUClusterAABB: the cluster AABB array
	AABBs() []GPUClusterAABB

	// Generation returns a counter that increments every time the AABBs are
	// recomputed, letting GPU-side consumers re-upload only on change.
	//
	// Returns:
	//   - uint64: the current AABB generation
	Generation() uint64

	// Near returns the near plane distance captured by the last SetViewProjection.
	//
	// Returns:
	//   - float32: the near plane distance
	Near() float32

	// Far returns the far plane distance captured by the last SetViewProjection.
	//
	// Returns:
	//   - float32: the far plane distance
	Far() float32

	// SliceDepthBounds returns the view-space depth range [zNear, zFar) of an
	// exponential depth slice.
	//
	// Parameters:
	//   - z: the slice index in [0, ClusterZ)
	//
	// Returns:
	//   - float32: the slice near depth
	//   - float32: the slice far depth
	SliceDepthBounds(z int) (float32, float32)
}

// Compile-time check that gridImpl implements Grid
var _ Grid = &gridImpl{}

// NewGrid creates a Grid for the given configuration. The AABB array is
// allocated once at the configured cluster count and reused across recomputes.
//
// Parameters:
//   - config: the cluster configuration
//
// Returns:
//   - Grid: a new Grid, dirty until the first SetViewProjection+Update
func NewGrid(config Config) Grid {
	return &gridImpl{
		config: config,
		near:   config.NearPlane,
		far:    config.FarPlane,
		aabbs:  make([]GPUClusterAABB, config.TotalClusters()),
	}
}

func (g *gridImpl) Config() Config {
	return g.config
}

func (g *gridImpl) SetViewProjection(view, proj []float32, width, height int, near, far float32) {
	changed := g.width != width || g.height != height || g.near != near || g.far != far
	for i := 0; i < 16 && !changed; i++ {
		changed = g.view[i] != view[i] || g.proj[i] != proj[i]
	}
	if !changed {
		return
	}

	copy(g.view[:], view)
	copy(g.proj[:], proj)
	g.width = width
	g.height = height
	g.near = near
	g.far = far
	g.dirty = true
}

func (g *gridImpl) Update() bool {
	if !g.dirty {
		return false
	}

	var invProj [16]float32
	if !common.Invert4(invProj[:], g.proj[:]) {
		// Degenerate projection; keep the previous AABBs rather than produce garbage.
		return false
	}

	cx, cy, cz := g.config.ClusterX, g.config.ClusterY, g.config.ClusterZ
	for z := 0; z < cz; z++ {
		sliceNear, sliceFar := g.SliceDepthBounds(z)
		for y := 0; y < cy; y++ {
			// Cluster y counts from the top of the screen to match fragment
			// coordinates; NDC y decreases as the tile index grows.
			ndcYTop := 1.0 - 2.0*float32(y)/float32(cy)
			ndcYBottom := 1.0 - 2.0*float32(y+1)/float32(cy)
			for x := 0; x < cx; x++ {
				ndcXLeft := 2.0*float32(x)/float32(cx) - 1.0
				ndcXRight := 2.0*float32(x+1)/float32(cx) - 1.0

				idx := z*cy*cx + y*cx + x
				g.computeAABB(&g.aabbs[idx], invProj[:],
					ndcXLeft, ndcXRight, ndcYBottom, ndcYTop, sliceNear, sliceFar)
			}
		}
	}

	g.dirty = false
	g.generation++
	return true
}

// computeAABB unprojects the tile's 4 NDC corners at both slice depths and
// takes the min/max of the 8 resulting view-space points.
func (g *gridImpl) computeAABB(out *GPUClusterAABB, invProj []float32,
	xMin, xMax, yMin, yMax, sliceNear, sliceFar float32,
) {
	corners := [4][2]float32{
		{xMin, yMin}, {xMax, yMin}, {xMin, yMax}, {xMax, yMax},
	}

	first := true
	var mn, mx [3]float32
	for _, c := range corners {
		ray, ok := unprojectRay(invProj, c[0], c[1])
		if !ok {
			continue
		}
		for _, depth := range [2]float32{sliceNear, sliceFar} {
			// Scale the ray so its view-space Z lands on the slice depth.
			// View-space Z is negative in the right-handed camera convention.
			t := -depth / ray[2]
			p := [3]float32{ray[0] * t, ray[1] * t, ray[2] * t}
			if first {
				mn, mx = p, p
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				if p[i] < mn[i] {
					mn[i] = p[i]
				}
				if p[i] > mx[i] {
					mx[i] = p[i]
				}
			}
		}
	}

	out.Min = mn
	out.Max = mx
}

// unprojectRay transforms an NDC corner on the far plane through the inverse
// projection, returning a view-space ray through the corner. The perspective
// divide is guarded against |w| ~ 0, which cannot occur for well-formed
// perspective matrices with near > 0 but would otherwise poison the AABB.
func unprojectRay(invProj []float32, ndcX, ndcY float32) ([3]float32, bool) {
	h := common.TransformPoint4(invProj, ndcX, ndcY, 1.0)
	if math32.Abs(h[3]) < 1e-8 {
		return [3]float32{}, false
	}
	inv := 1.0 / h[3]
	return [3]float32{h[0] * inv, h[1] * inv, h[2] * inv}, true
}

func (g *gridImpl) AABBs() []GPUClusterAABB {
	return g.aabbs
}

func (g *gridImpl) Generation() uint64 {
	return g.generation
}

func (g *gridImpl) Near() float32 {
	return g.near
}

func (g *gridImpl) Far() float32 {
	return g.far
}

func (g *gridImpl) SliceDepthBounds(z int) (float32, float32) {
	cz := float32(g.config.ClusterZ)
	ratio := g.far / g.near
	sliceNear := g.near * math32.Pow(ratio, float32(z)/cz)
	sliceFar := g.near * math32.Pow(ratio, float32(z+1)/cz)
	return sliceNear, sliceFar
}
