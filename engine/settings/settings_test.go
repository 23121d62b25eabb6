package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/engine/shadow"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `
[window]
title = "Test"
width = 1280
height = 720

[culling]
cluster_z = 32
gpu_culling = true

[shadows]
cascade_count = 2
resolution = 1024
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "Test", s.Window.Title)
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, 32, s.Culling.ClusterZ)
	assert.True(t, s.Culling.GPUCulling)
	assert.Equal(t, 2, s.Shadows.CascadeCount)

	// Untouched fields keep their defaults.
	assert.Equal(t, 16, s.Culling.ClusterX)
	assert.Equal(t, float32(shadow.DefaultShadowDistance), s.Shadows.ShadowDistance)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[window\ntitle="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s := Default()
	s.Window.Title = "Round Trip"
	s.Culling.MaxTotalLights = 64
	s.Shadows.DepthBias = 0.002

	assert.NoError(t, Save(path, s))
	loaded, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestClusterConfigMapping(t *testing.T) {
	s := Default()
	s.Culling.ClusterX = 8
	s.Culling.ClusterY = 4
	s.Culling.ClusterZ = 16
	s.Culling.MaxLightsPerCluster = 32
	s.Culling.MaxTotalLights = 100

	config := s.ClusterConfig()
	assert.Equal(t, 8, config.ClusterX)
	assert.Equal(t, 4, config.ClusterY)
	assert.Equal(t, 16, config.ClusterZ)
	assert.Equal(t, 32, config.MaxLightsPerCluster)
	assert.Equal(t, 100, config.MaxTotalLights)
}

func TestShadowConfigMapping(t *testing.T) {
	s := Default()
	s.Shadows.CascadeCount = 4
	s.Shadows.Resolution = 4096
	s.Shadows.DepthBias = 0.005
	s.Shadows.PCFKernel = 5

	config := s.ShadowConfig()
	assert.Equal(t, 4, config.CascadeCount)
	assert.Equal(t, 4096, config.Resolutions[0])
	assert.Equal(t, float32(0.005), config.DepthBias)
	assert.Equal(t, 5, config.PCFKernel)

	// Bias fields set individually keep the other at its default.
	assert.Equal(t, float32(shadow.DefaultNormalBiasScale), config.NormalBiasScale)
}

func TestShadowConfigZeroFieldsUseDefaults(t *testing.T) {
	var s Settings // everything zero
	config := s.ShadowConfig()
	assert.Equal(t, shadow.DefaultCascadeCount, config.CascadeCount)
	assert.Equal(t, float32(shadow.DefaultDepthBias), config.DepthBias)
}
