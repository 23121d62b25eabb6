package cluster

// lightBuffersImpl is the unexported implementation of LightBuffers.
type lightBuffersImpl struct {
	maxTotal int

	pointLights []GPUPointLight
	spotLights  []GPUSpotLight
}

// LightBuffers owns the transient per-frame point and spot light arrays. The
// scene keeps the canonical light list; these buffers hold only the packed
// copies gathered for the current frame. Capacities are fixed at construction
// from Config and never resized; adds past the cap are silently ignored, a
// soft content/tuning cap rather than an error.
type LightBuffers interface {
	// AddPointLight appends a point light for this frame. Ignored once the
	// configured total light cap is reached.
	//
	// Parameters:
	//   - position: world-space position
	//   - lightRange: attenuation cutoff distance
	//   - color: RGB color
	//   - intensity: scalar multiplier
	AddPointLight(position [3]float32, lightRange float32, color [3]float32, intensity float32)

	// AddSpotLight appends a spot light for this frame. Cone angles are taken
	// as cosines of the half-angles, matching the GPU record. Ignored once the
	// configured total light cap is reached.
	//
	// Parameters:
	//   - position: world-space apex position
	//   - lightRange: attenuation cutoff distance
	//   - direction: cone axis, normalized by the caller
	//   - outerCos: cos(outer half-angle)
	//   - innerCos: cos(inner half-angle)
	//   - color: RGB color
	//   - intensity: scalar multiplier
	AddSpotLight(position [3]float32, lightRange float32, direction [3]float32, outerCos, innerCos float32, color [3]float32, intensity float32)

	// ClearLights resets both arrays. Called by the frame owner before
	// re-enumerating the scene's lights.
	ClearLights()

	// PointLights returns the packed point light records for this frame.
	//
	// Returns:
	//   - []GPUPointLight: the point light array, valid until ClearLights
	PointLights() []GPUPointLight

	// SpotLights returns the packed spot light records for this frame.
	//
	// Returns:
	//   - []GPUSpotLight: the spot light array, valid until ClearLights
	SpotLights() []GPUSpotLight
}

// Compile-time check that lightBuffersImpl implements LightBuffers
var _ LightBuffers = &lightBuffersImpl{}

// NewLightBuffers creates light buffers with capacities taken from the
// configuration.
//
// Parameters:
//   - config: the cluster configuration supplying MaxTotalLights
//
// Returns:
//   - LightBuffers: empty light buffers ready for the first frame
func NewLightBuffers(config Config) LightBuffers {
	return &lightBuffersImpl{
		maxTotal:    config.MaxTotalLights,
		pointLights: make([]GPUPointLight, 0, config.MaxTotalLights),
		spotLights:  make([]GPUSpotLight, 0, config.MaxTotalLights),
	}
}

func (b *lightBuffersImpl) AddPointLight(position [3]float32, lightRange float32, color [3]float32, intensity float32) {
	if len(b.pointLights) >= b.maxTotal {
		return
	}
	b.pointLights = append(b.pointLights, GPUPointLight{
		Position:   position,
		LightRange: lightRange,
		Color:      color,
		Intensity:  intensity,
	})
}

func (b *lightBuffersImpl) AddSpotLight(position [3]float32, lightRange float32, direction [3]float32, outerCos, innerCos float32, color [3]float32, intensity float32) {
	if len(b.spotLights) >= b.maxTotal {
		return
	}
	b.spotLights = append(b.spotLights, GPUSpotLight{
		Position:   position,
		LightRange: lightRange,
		Direction:  direction,
		OuterCos:   outerCos,
		Color:      color,
		Intensity:  intensity,
		InnerCos:   innerCos,
	})
}

func (b *lightBuffersImpl) ClearLights() {
	b.pointLights = b.pointLights[:0]
	b.spotLights = b.spotLights[:0]
}

func (b *lightBuffersImpl) PointLights() []GPUPointLight {
	return b.pointLights
}

func (b *lightBuffersImpl) SpotLights() []GPUSpotLight {
	return b.spotLights
}
