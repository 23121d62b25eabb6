package shadow

// Defaults for the cascaded shadow map pipeline.
const (
	// DefaultCascadeCount is the number of shadow cascades. The design
	// generalizes to 1–4.
	DefaultCascadeCount = 3

	// DefaultShadowDistance caps how far from the camera shadows are rendered,
	// independent of the camera far plane.
	DefaultShadowDistance = 100.0

	// DefaultResolution is the per-cascade shadow map resolution in texels.
	DefaultResolution = 2048

	// DefaultDepthBias is the constant depth bias applied in the shadow
	// comparison, in depth units.
	DefaultDepthBias = 0.001

	// DefaultNormalBiasScale is the multiplier on the per-texel world size used
	// to offset fragment positions along their normal before the shadow
	// comparison, suppressing acne on concave geometry.
	DefaultNormalBiasScale = 3.0

	// DefaultAnchorDistance is how far along the reversed light direction the
	// light-view eye point is placed. A directional light has no position, so
	// the anchor only needs to sit outside the shadowed volume.
	DefaultAnchorDistance = 200.0

	// DefaultPCFKernel is the PCF filter kernel width (3 means a 3×3 tap grid).
	DefaultPCFKernel = 3

	// Rasterizer depth bias applied by the depth-only pipeline, in hardware
	// units, with a slope-scaled component for surfaces at grazing angles.
	DefaultRasterDepthBias      = 2
	DefaultRasterDepthBiasSlope = 1.5

	// CascadePadding expands each cascade's light-space bounding box by this
	// fraction of its extents to reduce edge clipping as geometry moves across
	// cascade boundaries.
	CascadePadding = 0.1

	// MaxCascades is the hard upper bound on the cascade count; the uniform
	// block reserves space for this many cascade matrices.
	MaxCascades = 4
)

// Config is the immutable-per-session configuration for cascaded shadow maps.
type Config struct {
	// CascadeCount is the number of cascades, in [1, MaxCascades].
	CascadeCount int

	// ShadowDistance caps the shadowed depth range independent of the camera
	// far plane.
	ShadowDistance float32

	// CascadeSplits are normalized, monotonically increasing break points in
	// [0, 1]; cascade i covers [CascadeSplits[i], CascadeSplits[i+1]] of the
	// shadowed range. Entries beyond CascadeCount+1 are unused. The default
	// biases detail toward the camera, where shadow texels are most visible.
	CascadeSplits [MaxCascades + 1]float32

	// Resolutions holds the per-cascade shadow map size in texels.
	Resolutions [MaxCascades]int

	// DepthBias and NormalBiasScale feed the shading-stage shadow comparison.
	DepthBias       float32
	NormalBiasScale float32

	// RasterDepthBias and RasterDepthBiasSlope configure the depth-only
	// pipeline's hardware bias.
	RasterDepthBias      int32
	RasterDepthBiasSlope float32

	// AnchorDistance places the light-view eye point at
	// -lightDirection * AnchorDistance.
	AnchorDistance float32

	// PCFKernel is the PCF filter kernel width.
	PCFKernel int
}

// NewConfig creates a shadow Config with default values, then applies the
// provided options.
//
// Parameters:
//   - options: a variadic list of options to override defaults
//
// Returns:
//   - Config: the configured Config
func NewConfig(options ...ConfigOption) Config {
	c := Config{
		CascadeCount:         DefaultCascadeCount,
		ShadowDistance:       DefaultShadowDistance,
		CascadeSplits:        [MaxCascades + 1]float32{0.0, 0.1, 0.3, 1.0, 1.0},
		Resolutions:          [MaxCascades]int{DefaultResolution, DefaultResolution, DefaultResolution, DefaultResolution},
		DepthBias:            DefaultDepthBias,
		NormalBiasScale:      DefaultNormalBiasScale,
		RasterDepthBias:      DefaultRasterDepthBias,
		RasterDepthBiasSlope: DefaultRasterDepthBiasSlope,
		AnchorDistance:       DefaultAnchorDistance,
		PCFKernel:            DefaultPCFKernel,
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// PCFRadius returns the PCF tap radius for the configured kernel width, so a
// kernel of 3 yields radius 1 (a 3×3 tap grid). Kernel widths below 1 fall
// back to a single tap.
//
// Returns:
//   - uint32: the tap radius uploaded to the shading stage
func (c Config) PCFRadius() uint32 {
	if c.PCFKernel < 1 {
		return 0
	}
	return uint32(c.PCFKernel / 2)
}

// TexelSize returns the UV-space texel size of the given cascade's shadow map,
// falling back to the default resolution when the cascade's entry is unset.
//
// Parameters:
//   - cascade: the cascade index
//
// Returns:
//   - float32: 1 / resolution for that cascade
func (c Config) TexelSize(cascade int) float32 {
	res := DefaultResolution
	if cascade >= 0 && cascade < MaxCascades && c.Resolutions[cascade] > 0 {
		res = c.Resolutions[cascade]
	}
	return 1.0 / float32(res)
}
