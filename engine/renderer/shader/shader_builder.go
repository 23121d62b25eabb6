package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderOption is a functional option for configuring a Shader during creation.
type ShaderOption func(*shaderImpl)

// WithEntryPoint overrides the conventional entry point name for the shader stage.
//
// Parameters:
//   - name: the entry point function name in the WGSL source
//
// Returns:
//   - ShaderOption: the option to apply
func WithEntryPoint(name string) ShaderOption {
	return func(s *shaderImpl) {
		s.entryPoint = name
	}
}

// WithBindGroupLayout declares the bind group layout descriptor for a group index.
// The descriptor must match the group's bindings in the WGSL source.
//
// Parameters:
//   - group: the bind group index
//   - desc: the layout descriptor for the group
//
// Returns:
//   - ShaderOption: the option to apply
func WithBindGroupLayout(group int, desc wgpu.BindGroupLayoutDescriptor) ShaderOption {
	return func(s *shaderImpl) {
		s.bindGroupLayouts[group] = desc
	}
}

// WithVertexLayout declares the vertex buffer layouts for a vertex buffer slot.
// Only meaningful for vertex shaders.
//
// Parameters:
//   - slot: the vertex buffer slot
//   - layouts: the vertex buffer layouts for the slot
//
// Returns:
//   - ShaderOption: the option to apply
func WithVertexLayout(slot int, layouts ...wgpu.VertexBufferLayout) ShaderOption {
	return func(s *shaderImpl) {
		s.vertexLayouts[slot] = layouts
	}
}
