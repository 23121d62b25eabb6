package model

import (
	"github.com/radiant-engine/radiant/engine/renderer/bind_group_provider"
)

// ModelBuilderOption is a functional option applied to a Model during construction via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name to the Model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshData is an option builder that sets the serialized mesh data of the Model.
//
// Parameters:
//   - vertexData: the serialized vertex buffer contents
//   - indexData: the serialized index buffer contents
//   - indexCount: the number of indices for draw calls
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh data to the Model
func WithMeshData(vertexData, indexData []byte, indexCount int) ModelBuilderOption {
	return func(m *model) {
		m.vertexData = vertexData
		m.indexData = indexData
		m.indexCount = indexCount
	}
}

// WithBoundingRadius is an option builder that sets the bounding sphere radius of the Model.
//
// Parameters:
//   - radius: the bounding radius in model units
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius to the Model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}

// WithMeshProvider is an option builder that sets the mesh BindGroupProvider of the Model.
//
// Parameters:
//   - provider: the provider that will own the GPU mesh buffers
//
// Returns:
//   - ModelBuilderOption: a function that applies the provider to the Model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}
