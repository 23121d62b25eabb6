package cluster

// ConfigOption is a functional option applied to a Config during construction via NewConfig.
type ConfigOption func(*Config)

// WithClusterCounts sets the cluster grid dimensions.
//
// Parameters:
//   - x: number of horizontal screen tiles
//   - y: number of vertical screen tiles
//   - z: number of exponential depth slices
//
// Returns:
//   - ConfigOption: a function that applies the cluster counts to a Config
func WithClusterCounts(x, y, z int) ConfigOption {
	return func(c *Config) {
		if x > 0 {
			c.ClusterX = x
		}
		if y > 0 {
			c.ClusterY = y
		}
		if z > 0 {
			c.ClusterZ = z
		}
	}
}

// WithMaxLightsPerCluster sets the per-cluster light index cap.
//
// Parameters:
//   - maxLights: the cap; values < 1 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the cap to a Config
func WithMaxLightsPerCluster(maxLights int) ConfigOption {
	return func(c *Config) {
		if maxLights > 0 {
			c.MaxLightsPerCluster = maxLights
		}
	}
}

// WithMaxTotalLights sets the per-frame light array cap.
//
// Parameters:
//   - maxLights: the cap; values < 1 are ignored
//
// Returns:
//   - ConfigOption: a function that applies the cap to a Config
func WithMaxTotalLights(maxLights int) ConfigOption {
	return func(c *Config) {
		if maxLights > 0 {
			c.MaxTotalLights = maxLights
		}
	}
}

// WithDepthRange sets the initial near and far planes for depth slicing.
// The active camera's planes override these every frame via SetViewProjection.
//
// Parameters:
//   - near: the near plane distance, must be > 0
//   - far: the far plane distance, must be > near
//
// Returns:
//   - ConfigOption: a function that applies the depth range to a Config
func WithDepthRange(near, far float32) ConfigOption {
	return func(c *Config) {
		if near > 0 && far > near {
			c.NearPlane = near
			c.FarPlane = far
		}
	}
}
