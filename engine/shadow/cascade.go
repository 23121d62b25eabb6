package shadow

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/radiant-engine/radiant/common"
)

// cascadeBuilderImpl is the unexported implementation of CascadeBuilder.
type cascadeBuilderImpl struct {
	config Config

	lightView [16]float32
	matrices  [][16]float32
	splits    [MaxCascades]float32
	valid     bool
}

// CascadeBuilder computes the per-cascade shadow matrices for a directional
// light. The light-space view matrix is shared across cascades (one light
// direction means one view basis); only the orthographic extents differ, which
// keeps the texel alignment direction consistent across cascade transitions.
// Matrices are cheap enough to recompute every frame the light or camera moves.
type CascadeBuilder interface {
	// Config returns the shadow configuration the builder was created with.
	//
	// Returns:
	//   - Config: the shadow configuration
	Config() Config

	// UpdateCascades recomputes the cascade matrices and split boundaries for
	// the current frame.
	//
	// Parameters:
	//   - lightDir: the directional light's direction (toward the scene)
	//   - view: column-major camera view matrix
	//   - proj: column-major camera projection matrix
	//   - near: camera near plane distance
	//   - far: camera far plane distance
	//
	// Returns:
	//   - error: an error for a degenerate light direction or camera matrix;
	//     previous cascade state is kept and the frame's shadows are skipped
	UpdateCascades(lightDir [3]float32, view, proj []float32, near, far float32) error

	// CascadeMatrix returns the combined ortho*lightView matrix for a cascade.
	//
	// Parameters:
	//   - cascade: the cascade index in [0, CascadeCount)
	//
	// Returns:
	//   - [16]float32: the cascade matrix, column-major
	CascadeMatrix(cascade int) [16]float32

	// SplitDepths returns the view-space far boundary of each cascade. Entries
	// past the configured cascade count are zero.
	//
	// Returns:
	//   - [MaxCascades]float32: per-cascade far split distances
	SplitDepths() [MaxCascades]float32

	// LightView returns the shared light-space view matrix.
	//
	// Returns:
	//   - [16]float32: the light view matrix, column-major
	LightView() [16]float32

	// Valid reports whether UpdateCascades has produced usable matrices.
	//
	// Returns:
	//   - bool: true once a successful update has run
	Valid() bool
}

// Compile-time check that cascadeBuilderImpl implements CascadeBuilder
var _ CascadeBuilder = &cascadeBuilderImpl{}

// NewCascadeBuilder creates a CascadeBuilder for the given configuration.
//
// Parameters:
//   - config: the shadow configuration
//
// Returns:
//   - CascadeBuilder: a builder with no valid cascades until the first update
func NewCascadeBuilder(config Config) CascadeBuilder {
	return &cascadeBuilderImpl{
		config:   config,
		matrices: make([][16]float32, config.CascadeCount),
	}
}

func (b *cascadeBuilderImpl) Config() Config {
	return b.config
}

func (b *cascadeBuilderImpl) UpdateCascades(lightDir [3]float32, view, proj []float32, near, far float32) error {
	lenSq := lightDir[0]*lightDir[0] + lightDir[1]*lightDir[1] + lightDir[2]*lightDir[2]
	if lenSq < 1e-12 {
		return errors.New("cascade update: zero light direction")
	}
	dir := common.Normalize3(lightDir[0], lightDir[1], lightDir[2])

	var viewProj, invViewProj [16]float32
	common.Mul4(viewProj[:], proj, view)
	if !common.Invert4(invViewProj[:], viewProj[:]) {
		return errors.New("cascade update: singular camera view-projection")
	}
	corners, ok := common.FrustumCornersWorld(invViewProj[:])
	if !ok {
		return errors.New("cascade update: degenerate frustum corner")
	}

	// A directional light has no position; anchor the eye far enough along the
	// reversed direction that the ortho fit never straddles it. Up falls back
	// to world X when the light points nearly straight up or down.
	upX, upY, upZ := float32(0), float32(1), float32(0)
	if math32.Abs(dir[1]) > 0.99 {
		upX, upY, upZ = 1, 0, 0
	}
	d := b.config.AnchorDistance
	common.LookAt(b.lightView[:],
		-dir[0]*d, -dir[1]*d, -dir[2]*d,
		0, 0, 0,
		upX, upY, upZ,
	)

	shadowFar := far
	if b.config.ShadowDistance < shadowFar {
		shadowFar = b.config.ShadowDistance
	}

	for i := 0; i < b.config.CascadeCount; i++ {
		splitNear := near + (shadowFar-near)*b.config.CascadeSplits[i]
		splitFar := near + (shadowFar-near)*b.config.CascadeSplits[i+1]
		b.splits[i] = splitFar

		sliceCorners := common.SliceFrustumCorners(corners, near, far, splitNear, splitFar)
		b.fitCascade(i, sliceCorners)
	}
	for i := b.config.CascadeCount; i < MaxCascades; i++ {
		b.splits[i] = 0
	}

	b.valid = true
	return nil
}

// fitCascade builds the cascade's orthographic projection from the
// light-space AABB of the slice corners, padded to reduce edge clipping, and
// stores ortho * lightView.
func (b *cascadeBuilderImpl) fitCascade(cascade int, corners [8][3]float32) {
	var mn, mx [3]float32
	for i, c := range corners {
		p := common.TransformPoint3(b.lightView[:], c[0], c[1], c[2])
		if i == 0 {
			mn, mx = p, p
			continue
		}
		for a := 0; a < 3; a++ {
			if p[a] < mn[a] {
				mn[a] = p[a]
			}
			if p[a] > mx[a] {
				mx[a] = p[a]
			}
		}
	}

	for a := 0; a < 3; a++ {
		pad := (mx[a] - mn[a]) * CascadePadding
		mn[a] -= pad
		mx[a] += pad
	}

	// The light view looks down -Z, so the near plane is at -maxZ and the far
	// plane at -minZ in light space.
	var ortho [16]float32
	common.Ortho(ortho[:], mn[0], mx[0], mn[1], mx[1], -mx[2], -mn[2])
	common.Mul4(b.matrices[cascade][:], ortho[:], b.lightView[:])
}

func (b *cascadeBuilderImpl) CascadeMatrix(cascade int) [16]float32 {
	return b.matrices[cascade]
}

func (b *cascadeBuilderImpl) SplitDepths() [MaxCascades]float32 {
	return b.splits
}

func (b *cascadeBuilderImpl) LightView() [16]float32 {
	return b.lightView
}

func (b *cascadeBuilderImpl) Valid() bool {
	return b.valid
}
