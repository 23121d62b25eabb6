package scene

import (
	"github.com/radiant-engine/radiant/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active.Store(active)
	}
}

// WithViewport sets the scene's initial viewport dimensions in pixels. The
// dimensions feed the cluster grid's tile sizing; Resize updates them when
// the window changes.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithViewport(width, height int) SceneBuilderOption {
	return func(s *scene) {
		if width > 0 && height > 0 {
			s.width = width
			s.height = height
		}
	}
}

// WithAmbientIntensity sets the scene's ambient light intensity.
//
// Parameters:
//   - intensity: the ambient intensity, clamped at 0
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientIntensity(intensity float32) SceneBuilderOption {
	return func(s *scene) {
		if intensity < 0 {
			intensity = 0
		}
		s.ambient = intensity
	}
}

// WithLights adds initial free-standing lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.lights = append(s.lights, l)
			}
		}
	}
}

// WithPackWorkers sets the number of pool workers instance packing fans out
// across during PrepareCompute. Defaults to runtime.NumCPU()-1; a count of 1
// packs batches inline without a pool.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPackWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}
