package shadow

// ConfigOption is a functional option applied to a Config during construction via NewConfig.
type ConfigOption func(*Config)

// WithCascadeCount sets the number of cascades, clamped to [1, MaxCascades].
//
// Parameters:
//   - count: the cascade count
//
// Returns:
//   - ConfigOption: a function that applies the cascade count to a Config
func WithCascadeCount(count int) ConfigOption {
	return func(c *Config) {
		if count < 1 {
			count = 1
		}
		if count > MaxCascades {
			count = MaxCascades
		}
		c.CascadeCount = count
	}
}

// WithShadowDistance sets the shadowed depth range cap.
//
// Parameters:
//   - distance: the cap in world units; values <= 0 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the shadow distance to a Config
func WithShadowDistance(distance float32) ConfigOption {
	return func(c *Config) {
		if distance > 0 {
			c.ShadowDistance = distance
		}
	}
}

// WithCascadeSplits sets the normalized split break points. The sequence must
// be monotonically non-decreasing in [0, 1] and is ignored otherwise; the
// cascade builder consumes CascadeCount+1 entries.
//
// Parameters:
//   - splits: the normalized break points, at most MaxCascades+1 values
//
// Returns:
//   - ConfigOption: a function that applies the splits to a Config
func WithCascadeSplits(splits ...float32) ConfigOption {
	return func(c *Config) {
		if len(splits) > MaxCascades+1 {
			return
		}
		prev := float32(0)
		for _, s := range splits {
			if s < prev || s > 1 {
				return
			}
			prev = s
		}
		copy(c.CascadeSplits[:], splits)
	}
}

// WithResolution sets a single resolution for all cascades.
//
// Parameters:
//   - resolution: the shadow map size in texels; values < 1 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the resolution to a Config
func WithResolution(resolution int) ConfigOption {
	return func(c *Config) {
		if resolution < 1 {
			return
		}
		for i := range c.Resolutions {
			c.Resolutions[i] = resolution
		}
	}
}

// WithCascadeResolutions sets per-cascade shadow map resolutions.
//
// Parameters:
//   - resolutions: per-cascade sizes in texels, at most MaxCascades values
//
// Returns:
//   - ConfigOption: a function that applies the resolutions to a Config
func WithCascadeResolutions(resolutions ...int) ConfigOption {
	return func(c *Config) {
		if len(resolutions) > MaxCascades {
			return
		}
		for _, r := range resolutions {
			if r < 1 {
				return
			}
		}
		copy(c.Resolutions[:], resolutions)
	}
}

// WithShadowBias sets the shading-stage depth bias and normal bias scale.
//
// Parameters:
//   - depthBias: constant bias in depth units
//   - normalBiasScale: multiplier on the per-texel world size
//
// Returns:
//   - ConfigOption: a function that applies the biases to a Config
func WithShadowBias(depthBias, normalBiasScale float32) ConfigOption {
	return func(c *Config) {
		c.DepthBias = depthBias
		c.NormalBiasScale = normalBiasScale
	}
}

// WithRasterDepthBias sets the hardware depth bias for the depth-only pipeline.
//
// Parameters:
//   - bias: constant bias in hardware units
//   - slopeScale: slope-scaled bias component
//
// Returns:
//   - ConfigOption: a function that applies the raster bias to a Config
func WithRasterDepthBias(bias int32, slopeScale float32) ConfigOption {
	return func(c *Config) {
		c.RasterDepthBias = bias
		c.RasterDepthBiasSlope = slopeScale
	}
}

// WithAnchorDistance sets how far along the reversed light direction the
// light-view eye point sits.
//
// Parameters:
//   - distance: the anchor distance in world units; values <= 0 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the anchor distance to a Config
func WithAnchorDistance(distance float32) ConfigOption {
	return func(c *Config) {
		if distance > 0 {
			c.AnchorDistance = distance
		}
	}
}

// WithPCFKernel sets the PCF filter kernel width.
//
// Parameters:
//   - kernel: the kernel width (3 means a 3×3 tap grid); values < 1 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the kernel width to a Config
func WithPCFKernel(kernel int) ConfigOption {
	return func(c *Config) {
		if kernel > 0 {
			c.PCFKernel = kernel
		}
	}
}
