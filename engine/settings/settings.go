package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/radiant-engine/radiant/common"
	"github.com/radiant-engine/radiant/engine/cluster"
	"github.com/radiant-engine/radiant/engine/shadow"
)

// Settings is the on-disk TOML configuration surface for the engine. Zero
// values mean "use the built-in default"; ClusterConfig and ShadowConfig
// apply only the fields a file actually sets.
type Settings struct {
	Window  WindowSettings  `toml:"window"`
	Culling CullingSettings `toml:"culling"`
	Shadows ShadowSettings  `toml:"shadows"`
	Scene   SceneSettings   `toml:"scene"`
}

// WindowSettings configures the OS window.
type WindowSettings struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	FrameCap  int    `toml:"frame_cap"`
	Profiling bool   `toml:"profiling"`
}

// CullingSettings configures the clustered light culling pipeline.
type CullingSettings struct {
	ClusterX            int  `toml:"cluster_x"`
	ClusterY            int  `toml:"cluster_y"`
	ClusterZ            int  `toml:"cluster_z"`
	MaxLightsPerCluster int  `toml:"max_lights_per_cluster"`
	MaxTotalLights      int  `toml:"max_total_lights"`
	GPUCulling          bool `toml:"gpu_culling"`
	Workers             int  `toml:"workers"`
}

// ShadowSettings configures the cascaded shadow map pipeline.
type ShadowSettings struct {
	CascadeCount    int     `toml:"cascade_count"`
	ShadowDistance  float32 `toml:"shadow_distance"`
	Resolution      int     `toml:"resolution"`
	DepthBias       float32 `toml:"depth_bias"`
	NormalBiasScale float32 `toml:"normal_bias_scale"`
	PCFKernel       int     `toml:"pcf_kernel"`
}

// SceneSettings configures per-scene defaults.
type SceneSettings struct {
	AmbientIntensity float32 `toml:"ambient_intensity"`
}

// Default returns the settings matching the engine's built-in defaults.
//
// Returns:
//   - Settings: the default settings
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:  "Radiant",
			Width:  1920,
			Height: 1080,
		},
		Culling: CullingSettings{
			ClusterX:            cluster.DefaultClusterX,
			ClusterY:            cluster.DefaultClusterY,
			ClusterZ:            cluster.DefaultClusterZ,
			MaxLightsPerCluster: cluster.DefaultMaxLightsPerCluster,
			MaxTotalLights:      cluster.DefaultMaxTotalLights,
		},
		Shadows: ShadowSettings{
			CascadeCount:    shadow.DefaultCascadeCount,
			ShadowDistance:  shadow.DefaultShadowDistance,
			Resolution:      shadow.DefaultResolution,
			DepthBias:       shadow.DefaultDepthBias,
			NormalBiasScale: shadow.DefaultNormalBiasScale,
			PCFKernel:       shadow.DefaultPCFKernel,
		},
		Scene: SceneSettings{
			AmbientIntensity: 0.03,
		},
	}
}

// Load reads TOML settings from path, layered over the defaults. A missing
// file is not an error; the defaults are returned unchanged so a fresh
// install runs without a config file.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Settings: the loaded settings
//   - error: an error if the file exists but cannot be read or parsed
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("settings: failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("settings: failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to path as TOML.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - error: an error if marshaling or writing fails
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: failed to write %s: %w", path, err)
	}
	return nil
}

// ClusterConfig builds a cluster configuration from the settings, applying
// only the fields with usable values.
//
// Returns:
//   - cluster.Config: the cluster configuration
func (s Settings) ClusterConfig() cluster.Config {
	var opts []cluster.ConfigOption
	if s.Culling.ClusterX > 0 && s.Culling.ClusterY > 0 && s.Culling.ClusterZ > 0 {
		opts = append(opts, cluster.WithClusterCounts(s.Culling.ClusterX, s.Culling.ClusterY, s.Culling.ClusterZ))
	}
	if s.Culling.MaxLightsPerCluster > 0 {
		opts = append(opts, cluster.WithMaxLightsPerCluster(s.Culling.MaxLightsPerCluster))
	}
	if s.Culling.MaxTotalLights > 0 {
		opts = append(opts, cluster.WithMaxTotalLights(s.Culling.MaxTotalLights))
	}
	return cluster.NewConfig(opts...)
}

// ShadowConfig builds a shadow configuration from the settings, applying
// only the fields with usable values.
//
// Returns:
//   - shadow.Config: the shadow configuration
func (s Settings) ShadowConfig() shadow.Config {
	var opts []shadow.ConfigOption
	if s.Shadows.CascadeCount > 0 {
		opts = append(opts, shadow.WithCascadeCount(s.Shadows.CascadeCount))
	}
	if s.Shadows.ShadowDistance > 0 {
		opts = append(opts, shadow.WithShadowDistance(s.Shadows.ShadowDistance))
	}
	if s.Shadows.Resolution > 0 {
		opts = append(opts, shadow.WithResolution(s.Shadows.Resolution))
	}
	if s.Shadows.DepthBias > 0 || s.Shadows.NormalBiasScale > 0 {
		opts = append(opts, shadow.WithShadowBias(
			common.Coalesce(s.Shadows.DepthBias, shadow.DefaultDepthBias),
			common.Coalesce(s.Shadows.NormalBiasScale, shadow.DefaultNormalBiasScale),
		))
	}
	if s.Shadows.PCFKernel > 0 {
		opts = append(opts, shadow.WithPCFKernel(s.Shadows.PCFKernel))
	}
	return shadow.NewConfig(opts...)
}
