package cluster

// Default cluster grid dimensions. 16×9 screen tiles match a 16:9 aspect ratio
// so tiles stay close to square, and 24 exponential depth slices cover the
// usual near/far span without over-slicing the distance.
const (
	DefaultClusterX = 16
	DefaultClusterY = 9
	DefaultClusterZ = 24

	// DefaultMaxLightsPerCluster caps how many light indices a single cluster
	// can hold. Lights beyond the cap are silently dropped for that cluster;
	// this is a quality/performance cap, not an error.
	DefaultMaxLightsPerCluster = 128

	// DefaultMaxTotalLights caps the per-frame point and spot light arrays
	// (each array individually). Adds beyond the cap are silently ignored.
	DefaultMaxTotalLights = 256
)

// Config is the immutable-per-session configuration for the clustered light
// culling pipeline. Buffer capacities derive from it at initialization and are
// never resized at runtime.
//
// NearPlane and FarPlane seed the depth slicing but MUST be kept in sync with
// the active camera via Grid.SetViewProjection every frame; stale planes make
// the slice math wrong for that frame.
type Config struct {
	// ClusterX, ClusterY, ClusterZ are the cluster grid dimensions.
	ClusterX int
	ClusterY int
	ClusterZ int

	// MaxLightsPerCluster is the per-cluster light index cap.
	MaxLightsPerCluster int

	// MaxTotalLights is the per-frame cap for each light array.
	MaxTotalLights int

	// NearPlane and FarPlane are the initial depth range for slicing.
	NearPlane float32
	FarPlane  float32
}

// NewConfig creates a Config with default values, then applies the provided options.
//
// Parameters:
//   - options: a variadic list of options to override defaults
//
// Returns:
//   - Config: the configured Config
func NewConfig(options ...ConfigOption) Config {
	c := Config{
		ClusterX:            DefaultClusterX,
		ClusterY:            DefaultClusterY,
		ClusterZ:            DefaultClusterZ,
		MaxLightsPerCluster: DefaultMaxLightsPerCluster,
		MaxTotalLights:      DefaultMaxTotalLights,
		NearPlane:           0.1,
		FarPlane:            100.0,
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// TotalClusters returns the flattened cluster count (ClusterX·ClusterY·ClusterZ).
func (c Config) TotalClusters() int {
	return c.ClusterX * c.ClusterY * c.ClusterZ
}

// MaxLightIndices returns the capacity of the global light index array.
func (c Config) MaxLightIndices() int {
	return c.TotalClusters() * c.MaxLightsPerCluster
}
