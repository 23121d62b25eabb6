package cluster

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/radiant-engine/radiant/engine/renderer"
	"github.com/radiant-engine/radiant/engine/renderer/bind_group_provider"
	"github.com/radiant-engine/radiant/engine/renderer/pipeline"
	"github.com/radiant-engine/radiant/engine/renderer/shader"
)

// LightCullPipelineKey is the renderer cache key for the culling compute pipeline.
const LightCullPipelineKey = "cluster_light_cull"

// Compute bindings, group 0. Must match the WGSL source in LightCullSource.
// Exported so the shading pass can share the output buffers by binding index.
const (
	CullBindingUniforms     = 0
	CullBindingAABBs        = 1
	CullBindingPointLights  = 2
	CullBindingSpotLights   = 3
	CullBindingLightGrid    = 4
	CullBindingLightIndices = 5
)

// cullWorkgroupSizeX matches @workgroup_size(16, 1, 1) in the WGSL source.
const cullWorkgroupSizeX = 16

// gpuCullerImpl is the unexported implementation of the GPU compute culling
// path. Culling output (light grid + light index buffers) is written by the
// compute dispatch and never read back; the shading pass binds the same
// buffers through the shared provider.
type gpuCullerImpl struct {
	config   Config
	r        renderer.Renderer
	provider bind_group_provider.BindGroupProvider

	// uploadedGeneration tracks which grid AABB generation is resident on the
	// GPU; AABBs are re-uploaded only when the grid recomputes.
	uploadedGeneration uint64
	hasUploaded        bool
}

// Compile-time check that gpuCullerImpl implements LightCuller
var _ LightCuller = &gpuCullerImpl{}

// NewGPUComputeCuller creates the GPU compute culling path: it registers the
// culling compute pipeline and allocates the storage buffers the dispatch
// reads and writes. Construction errors name the failing resource so the
// caller can log them and fall back to the CPU path.
//
// Parameters:
//   - config: the cluster configuration
//   - r: the renderer providing the device and compute frame batching
//
// Returns:
//   - LightCuller: the GPU culling path
//   - error: an error if pipeline or buffer creation fails
func NewGPUComputeCuller(config Config, r renderer.Renderer) (LightCuller, error) {
	cullShader := shader.NewShader(LightCullPipelineKey, shader.ShaderTypeCompute, LightCullSource,
		shader.WithBindGroupLayout(0, CullBindGroupLayout(config)))

	p := pipeline.NewPipeline(LightCullPipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(cullShader))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("light cull compute pipeline: %w", err)
	}

	provider := bind_group_provider.NewBindGroupProvider("Cluster Light Cull")
	if err := r.InitBindGroup(provider, CullBindGroupLayout(config), nil, nil); err != nil {
		return nil, fmt.Errorf("light cull bind group (clusters=%d, maxIndices=%d): %w",
			config.TotalClusters(), config.MaxLightIndices(), err)
	}

	return &gpuCullerImpl{
		config:   config,
		r:        r,
		provider: provider,
	}, nil
}

// CullBindGroupLayout returns the explicit bind group layout for the culling
// compute dispatch. Buffer sizes are fixed from the configuration; the same
// descriptor drives bind group creation and pipeline layout so the two cannot
// drift.
//
// Parameters:
//   - config: the cluster configuration supplying buffer capacities
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 0 layout
func CullBindGroupLayout(config Config) wgpu.BindGroupLayoutDescriptor {
	totalClusters := uint64(config.TotalClusters())
	maxLights := uint64(config.MaxTotalLights)
	maxIndices := uint64(config.MaxLightIndices())

	return wgpu.BindGroupLayoutDescriptor{
		Label: "Cluster Light Cull Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    CullBindingUniforms,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 96,
				},
			},
			{
				Binding:    CullBindingAABBs,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: totalClusters * 32,
				},
			},
			{
				Binding:    CullBindingPointLights,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: maxLights * 32,
				},
			},
			{
				Binding:    CullBindingSpotLights,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: maxLights * 64,
				},
			},
			{
				Binding:    CullBindingLightGrid,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeStorage,
					MinBindingSize: totalClusters * 8,
				},
			},
			{
				Binding:    CullBindingLightIndices,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeStorage,
					MinBindingSize: maxIndices * 4,
				},
			},
		},
	}
}

func (g *gpuCullerImpl) Cull(grid Grid, lights LightBuffers, view []float32) error {
	points := lights.PointLights()
	spots := lights.SpotLights()

	uniforms := GPUCullUniforms{
		ClusterX:            uint32(g.config.ClusterX),
		ClusterY:            uint32(g.config.ClusterY),
		ClusterZ:            uint32(g.config.ClusterZ),
		MaxLightsPerCluster: uint32(g.config.MaxLightsPerCluster),
		PointLightCount:     uint32(len(points)),
		SpotLightCount:      uint32(len(spots)),
	}
	copy(uniforms.View[:], view)

	writes := []bind_group_provider.BufferWrite{
		{Provider: g.provider, Binding: CullBindingUniforms, Data: uniforms.Marshal()},
	}
	if !g.hasUploaded || g.uploadedGeneration != grid.Generation() {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: g.provider,
			Binding:  CullBindingAABBs,
			Data:     MarshalAABBBuffer(grid.AABBs()),
		})
		g.uploadedGeneration = grid.Generation()
		g.hasUploaded = true
	}
	if len(points) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: g.provider,
			Binding:  CullBindingPointLights,
			Data:     MarshalPointLightBuffer(points),
		})
	}
	if len(spots) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: g.provider,
			Binding:  CullBindingSpotLights,
			Data:     MarshalSpotLightBuffer(spots),
		})
	}
	g.r.WriteBuffers(writes)

	if err := g.r.BeginComputeFrame(); err != nil {
		return fmt.Errorf("light cull compute frame: %w", err)
	}
	// Dispatch even with zero lights: the shader writes {0,0} to every grid
	// entry, which is what clears stale spans from the previous frame.
	g.r.DispatchCompute(LightCullPipelineKey, g.provider, [3]uint32{
		uint32((g.config.ClusterX + cullWorkgroupSizeX - 1) / cullWorkgroupSizeX),
		uint32(g.config.ClusterY),
		uint32(g.config.ClusterZ),
	})
	g.r.EndComputeFrame()

	return nil
}

func (g *gpuCullerImpl) HostResults() ([]GPULightGrid, []uint32, bool) {
	return nil, nil, false
}

// Provider returns the bind group provider owning the culling buffers so the
// shading pass can share the light grid and light index storage buffers.
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the culling buffer provider
func (g *gpuCullerImpl) Provider() bind_group_provider.BindGroupProvider {
	return g.provider
}

func (g *gpuCullerImpl) Release() {
	if g.provider != nil {
		g.provider.Release()
		g.provider = nil
	}
}
