package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in pair with a fragment shader.
	ShaderTypeVertex ShaderType = iota
	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
	// ShaderTypeCompute is the compute shader type, used for standalone compute dispatches.
	ShaderTypeCompute
)

// shaderImpl is the unexported implementation of Shader.
type shaderImpl struct {
	key        string
	shaderType ShaderType
	source     string
	entryPoint string

	// bindGroupLayouts holds the declared layout descriptors keyed by group index.
	// Layouts are declared explicitly by the module registering the shader; they are the
	// single source of truth for the GPU-side resource schema and must match the WGSL
	// bindings in source.
	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor

	// vertexLayouts holds vertex buffer layouts keyed by vertex buffer slot.
	// Only meaningful for ShaderTypeVertex.
	vertexLayouts map[int][]wgpu.VertexBufferLayout
}

// Shader describes a WGSL shader stage together with its explicitly declared GPU
// resource schema. The renderer consumes the declared bind group layout descriptors
// and vertex layouts verbatim when building pipelines, so the declarations must stay
// in lockstep with the WGSL source.
type Shader interface {
	// Key returns the unique identifier for this shader, used as a debug label on the GPU module.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Type returns the shader stage of this shader.
	//
	// Returns:
	//   - ShaderType: the shader stage
	Type() ShaderType

	// Source returns the WGSL source code of this shader.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// EntryPoint returns the entry point function name for this shader.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves all declared bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptor retrieves the declared layout descriptor for a specific group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor, zero-valued if not declared
	//   - bool: true if a layout was declared for the group
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// VertexLayout retrieves the vertex buffer layouts for a specific slot.
	//
	// Parameters:
	//   - key: the vertex buffer slot
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts for the slot, or nil if not declared
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all declared vertex buffer layouts.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by vertex buffer slot
	VertexLayouts() map[int][]wgpu.VertexBufferLayout
}

// Compile-time check that shaderImpl implements Shader
var _ Shader = &shaderImpl{}

// NewShader creates a new Shader from WGSL source with the provided options.
// Bind group layouts and vertex layouts are declared explicitly via options rather
// than reflected from the source, keeping the full resource schema in one place at
// the registration site.
//
// Parameters:
//   - key: unique identifier for the shader, used as a GPU debug label
//   - shaderType: the shader stage
//   - source: the WGSL source code
//   - options: a variadic list of options to configure the shader
//
// Returns:
//   - Shader: a new instance of Shader configured with the provided options
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderOption) Shader {
	s := &shaderImpl{
		key:              key,
		shaderType:       shaderType,
		source:           source,
		entryPoint:       defaultEntryPoint(shaderType),
		bindGroupLayouts: make(map[int]wgpu.BindGroupLayoutDescriptor),
		vertexLayouts:    make(map[int][]wgpu.VertexBufferLayout),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// defaultEntryPoint returns the conventional entry point name for a shader stage.
func defaultEntryPoint(shaderType ShaderType) string {
	switch shaderType {
	case ShaderTypeVertex:
		return "vs_main"
	case ShaderTypeFragment:
		return "fs_main"
	case ShaderTypeCompute:
		return "cs_main"
	default:
		return "main"
	}
}

func (s *shaderImpl) Key() string {
	return s.key
}

func (s *shaderImpl) Type() ShaderType {
	return s.shaderType
}

func (s *shaderImpl) Source() string {
	return s.source
}

func (s *shaderImpl) EntryPoint() string {
	return s.entryPoint
}

func (s *shaderImpl) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayouts
}

func (s *shaderImpl) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	desc, ok := s.bindGroupLayouts[group]
	return desc, ok
}

func (s *shaderImpl) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shaderImpl) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}
