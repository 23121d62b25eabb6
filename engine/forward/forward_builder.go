package forward

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/radiant-engine/radiant/engine/cluster"
	"github.com/radiant-engine/radiant/engine/shadow"
)

// forwardPlusOptions holds construction state for the facade.
type forwardPlusOptions struct {
	clusterConfig cluster.Config
	shadowConfig  shadow.Config
	gpuCulling    bool
	cullWorkers   int
	vertexLayouts []wgpu.VertexBufferLayout
}

// ForwardPlusOption is a functional option for configuring the facade.
type ForwardPlusOption func(*forwardPlusOptions)

func defaultForwardPlusOptions() *forwardPlusOptions {
	return &forwardPlusOptions{
		clusterConfig: cluster.NewConfig(),
		shadowConfig:  shadow.NewConfig(),
		vertexLayouts: []wgpu.VertexBufferLayout{DefaultVertexLayout()},
	}
}

// DefaultVertexLayout returns the vertex layout the shading and shadow
// pipelines assume when the caller does not supply one: the 32-byte
// position+normal+uv vertex produced by the model package.
//
// Returns:
//   - wgpu.VertexBufferLayout: the default layout
func DefaultVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// WithClusterConfig sets the cluster grid configuration.
//
// Parameters:
//   - config: the cluster configuration
//
// Returns:
//   - ForwardPlusOption: the configuration option
func WithClusterConfig(config cluster.Config) ForwardPlusOption {
	return func(o *forwardPlusOptions) {
		o.clusterConfig = config
	}
}

// WithShadowConfig sets the cascade shadow configuration.
//
// Parameters:
//   - config: the shadow configuration
//
// Returns:
//   - ForwardPlusOption: the configuration option
func WithShadowConfig(config shadow.Config) ForwardPlusOption {
	return func(o *forwardPlusOptions) {
		o.shadowConfig = config
	}
}

// WithGPUCulling opts in to the compute culling path. When compute setup
// fails at construction the facade logs the failure and falls back to the
// CPU path; rendering output is identical either way.
//
// Returns:
//   - ForwardPlusOption: the configuration option
func WithGPUCulling() ForwardPlusOption {
	return func(o *forwardPlusOptions) {
		o.gpuCulling = true
	}
}

// WithCullWorkers sets the worker count for the CPU culling path. Zero keeps
// the default sizing; the GPU path ignores it.
//
// Parameters:
//   - workers: the number of culling workers
//
// Returns:
//   - ForwardPlusOption: the configuration option
func WithCullWorkers(workers int) ForwardPlusOption {
	return func(o *forwardPlusOptions) {
		o.cullWorkers = workers
	}
}

// WithVertexLayouts sets the vertex buffer layouts shared by the shading and
// shadow pipelines. Location 0 must be a vec3 position; the shading pipeline
// additionally reads a vec3 normal at location 1.
//
// Parameters:
//   - layouts: the vertex buffer layouts
//
// Returns:
//   - ForwardPlusOption: the configuration option
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) ForwardPlusOption {
	return func(o *forwardPlusOptions) {
		if len(layouts) > 0 {
			o.vertexLayouts = layouts
		}
	}
}
