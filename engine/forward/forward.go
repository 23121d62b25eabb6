package forward

import (
	"fmt"
	"log"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/radiant-engine/radiant/common"
	"github.com/radiant-engine/radiant/engine/cluster"
	"github.com/radiant-engine/radiant/engine/renderer"
	"github.com/radiant-engine/radiant/engine/renderer/bind_group_provider"
	"github.com/radiant-engine/radiant/engine/renderer/pipeline"
	"github.com/radiant-engine/radiant/engine/renderer/shader"
	"github.com/radiant-engine/radiant/engine/shadow"
)

// ForwardLitPipelineKey is the renderer cache key for the clustered shading pipeline.
const ForwardLitPipelineKey = "forward_lit"

// Shading bindings, group 0. Must match the WGSL source in ForwardLitSource.
const (
	litBindingFrame         = 0
	litBindingLightGrid     = 1
	litBindingLightIndices  = 2
	litBindingPointLights   = 3
	litBindingSpotLights    = 4
	litBindingShadowMap0    = 5
	litBindingShadowSampler = 8
)

// litShadowMapSlots is the number of depth texture bindings in the shading
// layout. Configurations with fewer cascades rebind the last map.
const litShadowMapSlots = 3

// forwardPlusImpl is the unexported implementation of ForwardPlus.
type forwardPlusImpl struct {
	r renderer.Renderer

	clusterConfig cluster.Config
	shadowConfig  shadow.Config

	grid       cluster.Grid
	lights     cluster.LightBuffers
	culler     cluster.LightCuller
	gpuCulling bool

	cascades   shadow.CascadeBuilder
	rasterizer shadow.Rasterizer

	litProvider bind_group_provider.BindGroupProvider

	uniforms GPUFrameUniforms

	view   [16]float32
	proj   [16]float32
	width  int
	height int
	near   float32
	far    float32
}

// ForwardPlus ties the clustered lighting and cascade shadow subsystems into
// one per-frame surface. The expected frame order is: clear and re-add
// lights, SetCamera, CullLights, UpdateCascades, RenderShadows, then the
// caller's color pass binding LitProvider at group 0.
type ForwardPlus interface {
	// SetCamera sets the camera state for the frame. The cluster grid
	// recomputes its AABBs only when the projection, viewport, or depth range
	// actually changed.
	//
	// Parameters:
	//   - view: the 4x4 column-major view matrix
	//   - proj: the 4x4 column-major projection matrix
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//   - near: camera near plane distance
	//   - far: camera far plane distance
	SetCamera(view, proj []float32, width, height int, near, far float32)

	// SetSunLight sets the directional sun for the frame. The direction is
	// the way the light travels, not the vector toward the sun; it also
	// drives the shadow cascades in UpdateCascades.
	//
	// Parameters:
	//   - direction: world-space direction the sun shines toward
	//   - color: sun light color
	//   - intensity: sun radiance scale
	//   - ambient: flat ambient term applied to every fragment
	SetSunLight(direction, color [3]float32, intensity, ambient float32)

	// AddPointLight queues a point light for this frame. Lights past the
	// total capacity are dropped silently.
	//
	// Parameters:
	//   - position: world-space light position
	//   - lightRange: influence radius in world units
	//   - color: light color
	//   - intensity: light radiance scale
	AddPointLight(position [3]float32, lightRange float32, color [3]float32, intensity float32)

	// AddSpotLight queues a spot light for this frame. Angles are half-angles
	// in radians measured from the cone axis; the inner angle is where
	// falloff begins and must not exceed the outer angle. Lights past the
	// total capacity are dropped silently.
	//
	// Parameters:
	//   - position: world-space apex position
	//   - lightRange: cone length in world units
	//   - direction: world-space cone axis
	//   - outerAngle: half-angle in radians where the cone ends
	//   - innerAngle: half-angle in radians where falloff begins
	//   - color: light color
	//   - intensity: light radiance scale
	AddSpotLight(position [3]float32, lightRange float32, direction [3]float32, outerAngle, innerAngle float32, color [3]float32, intensity float32)

	// ClearLights removes all queued lights. Call at the start of each frame
	// before re-adding the frame's lights.
	ClearLights()

	// CullLights runs light assignment for the frame and uploads the shading
	// inputs: the light grid, light index list, light records, and the merged
	// frame uniform block. It must run every frame, including frames with no
	// lights, so stale cluster spans from the previous frame are cleared.
	//
	// Returns:
	//   - error: an error if the culling pass could not run; skip the frame
	CullLights() error

	// UpdateCascades refits the shadow cascades to the current camera and sun
	// direction and uploads the shadow section of the frame uniform block. A
	// zero sun direction disables shadows for the frame instead of failing.
	//
	// Returns:
	//   - error: an error if the camera state is degenerate; skip the frame
	UpdateCascades() error

	// RenderShadows records the depth-only cascade passes. The callback runs
	// once per cascade with that cascade's pass bound; the caller issues
	// ShadowDrawCall for each shadow-casting mesh, binding the cascade
	// provider at group 0 and its instance provider at group 1.
	//
	// Parameters:
	//   - fn: per-cascade draw callback
	//
	// Returns:
	//   - error: an error if the shadow frame could not start
	RenderShadows(fn func(cascade int)) error

	// CascadeProvider returns the uniform provider for cascade i's depth
	// pass, for binding at group 0 inside the RenderShadows callback.
	//
	// Parameters:
	//   - cascade: the cascade index
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the cascade's uniform provider
	CascadeProvider(cascade int) bind_group_provider.BindGroupProvider

	// LitProvider returns the provider bound at group 0 during the color
	// pass. It carries the frame uniforms, culling outputs, light records,
	// shadow maps, and comparison sampler.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the shading provider
	LitProvider() bind_group_provider.BindGroupProvider

	// Grid returns the cluster grid, exposed for diagnostics.
	//
	// Returns:
	//   - cluster.Grid: the cluster grid
	Grid() cluster.Grid

	// Lights returns the frame light buffers, exposed for diagnostics.
	//
	// Returns:
	//   - cluster.LightBuffers: the light buffers
	Lights() cluster.LightBuffers

	// GPUCullingActive reports whether the compute culling path is in use.
	// False means the CPU path, either by configuration or because compute
	// setup failed and the facade fell back.
	//
	// Returns:
	//   - bool: true when culling runs on the GPU
	GPUCullingActive() bool

	// FrameUniforms returns a copy of the current merged uniform block,
	// exposed for diagnostics.
	//
	// Returns:
	//   - GPUFrameUniforms: the current frame uniforms
	FrameUniforms() GPUFrameUniforms

	// Release frees the shading provider, shadow resources, and culler.
	Release()
}

// Compile-time check that forwardPlusImpl implements ForwardPlus
var _ ForwardPlus = &forwardPlusImpl{}

// NewForwardPlus creates the Forward+ facade: the cluster grid, light
// buffers, culling path, cascade builder, shadow rasterizer, and the shading
// pipeline with its bind group. GPU culling is opt-in; when compute setup
// fails the facade logs the error and falls back to the CPU path rather than
// failing construction.
//
// Parameters:
//   - r: the renderer providing the device and frame encoders
//   - options: a variadic list of options to configure the facade
//
// Returns:
//   - ForwardPlus: the facade
//   - error: an error if shading pipeline or shadow setup fails
func NewForwardPlus(r renderer.Renderer, options ...ForwardPlusOption) (ForwardPlus, error) {
	opts := defaultForwardPlusOptions()
	for _, opt := range options {
		opt(opts)
	}

	f := &forwardPlusImpl{
		r:             r,
		clusterConfig: opts.clusterConfig,
		shadowConfig:  opts.shadowConfig,
		grid:          cluster.NewGrid(opts.clusterConfig),
		lights:        cluster.NewLightBuffers(opts.clusterConfig),
		cascades:      shadow.NewCascadeBuilder(opts.shadowConfig),
	}

	if opts.gpuCulling {
		culler, err := cluster.NewGPUComputeCuller(opts.clusterConfig, r)
		if err != nil {
			log.Printf("forward: gpu light culling unavailable, falling back to cpu: %v", err)
		} else {
			f.culler = culler
			f.gpuCulling = true
		}
	}
	if f.culler == nil {
		cpuOpts := []cluster.CPUCullerOption{}
		if opts.cullWorkers > 0 {
			cpuOpts = append(cpuOpts, cluster.WithWorkerCount(opts.cullWorkers))
		}
		f.culler = cluster.NewCPUCuller(opts.clusterConfig, cpuOpts...)
	}

	rasterizer, err := shadow.NewRasterizer(opts.shadowConfig, r, opts.vertexLayouts...)
	if err != nil {
		f.culler.Release()
		return nil, fmt.Errorf("shadow rasterizer: %w", err)
	}
	f.rasterizer = rasterizer

	litLayout := LitBindGroupLayout(opts.clusterConfig)
	vertexShader := shader.NewShader(ForwardLitPipelineKey, shader.ShaderTypeVertex, ForwardLitSource,
		shader.WithBindGroupLayout(0, litLayout),
		shader.WithBindGroupLayout(1, shadow.InstanceBindGroupLayout()),
		shader.WithVertexLayout(0, opts.vertexLayouts...))
	fragmentShader := shader.NewShader(ForwardLitPipelineKey, shader.ShaderTypeFragment, ForwardLitSource,
		shader.WithBindGroupLayout(0, litLayout))

	p := pipeline.NewPipeline(ForwardLitPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader))
	if err := r.RegisterPipelines(p); err != nil {
		f.rasterizer.Release()
		f.culler.Release()
		return nil, fmt.Errorf("forward lit pipeline: %w", err)
	}

	if err := f.initLitProvider(); err != nil {
		f.rasterizer.Release()
		f.culler.Release()
		return nil, err
	}

	return f, nil
}

// LitBindGroupLayout returns the explicit group 0 layout of the shading
// pipeline: one merged frame uniform, the four culling storage buffers, the
// cascade shadow maps, and the comparison sampler. A single uniform binding
// keeps the fragment stage well inside per-stage uniform binding limits.
//
// Parameters:
//   - config: the cluster configuration supplying buffer capacities
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 0 layout
func LitBindGroupLayout(config cluster.Config) wgpu.BindGroupLayoutDescriptor {
	totalClusters := uint64(config.TotalClusters())
	maxLights := uint64(config.MaxTotalLights)
	maxIndices := uint64(config.MaxLightIndices())

	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    litBindingFrame,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: frameUniformsSize,
			},
		},
		{
			Binding:    litBindingLightGrid,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: totalClusters * 8,
			},
		},
		{
			Binding:    litBindingLightIndices,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: maxIndices * 4,
			},
		},
		{
			Binding:    litBindingPointLights,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: maxLights * 32,
			},
		},
		{
			Binding:    litBindingSpotLights,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: maxLights * 64,
			},
		},
	}
	for i := 0; i < litShadowMapSlots; i++ {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(litBindingShadowMap0 + i),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeDepth,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    litBindingShadowSampler,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeComparison,
		},
	})

	return wgpu.BindGroupLayoutDescriptor{
		Label:   "Forward Lit Layout",
		Entries: entries,
	}
}

// initLitProvider builds the shading bind group. The GPU culling path shares
// the culler's storage buffers so the compute output feeds the fragment stage
// with no copies; the CPU path gets freshly created buffers that CullLights
// uploads into each frame.
func (f *forwardPlusImpl) initLitProvider() error {
	provider := bind_group_provider.NewBindGroupProvider("Forward Lit")

	if shared, ok := f.culler.(interface {
		Provider() bind_group_provider.BindGroupProvider
	}); ok && f.gpuCulling {
		cullProvider := shared.Provider()
		provider.SetBuffer(litBindingLightGrid, cullProvider.Buffer(cluster.CullBindingLightGrid))
		provider.SetBuffer(litBindingLightIndices, cullProvider.Buffer(cluster.CullBindingLightIndices))
		provider.SetBuffer(litBindingPointLights, cullProvider.Buffer(cluster.CullBindingPointLights))
		provider.SetBuffer(litBindingSpotLights, cullProvider.Buffer(cluster.CullBindingSpotLights))
	}

	for i := 0; i < litShadowMapSlots; i++ {
		cascade := i
		if cascade >= f.shadowConfig.CascadeCount {
			cascade = f.shadowConfig.CascadeCount - 1
		}
		provider.SetTextureView(litBindingShadowMap0+i, f.rasterizer.DepthView(cascade))
	}
	provider.SetSampler(litBindingShadowSampler, f.rasterizer.Sampler())

	if err := f.r.InitBindGroup(provider, LitBindGroupLayout(f.clusterConfig), nil, nil); err != nil {
		return fmt.Errorf("forward lit bind group: %w", err)
	}
	f.litProvider = provider
	return nil
}

func (f *forwardPlusImpl) SetCamera(view, proj []float32, width, height int, near, far float32) {
	copy(f.view[:], view)
	copy(f.proj[:], proj)
	f.width = width
	f.height = height
	f.near = near
	f.far = far
	f.grid.SetViewProjection(view, proj, width, height, near, far)
}

func (f *forwardPlusImpl) SetSunLight(direction, color [3]float32, intensity, ambient float32) {
	f.uniforms.SunDirection = direction
	f.uniforms.SunColor = color
	f.uniforms.SunIntensity = intensity
	f.uniforms.AmbientIntensity = ambient
}

func (f *forwardPlusImpl) AddPointLight(position [3]float32, lightRange float32, color [3]float32, intensity float32) {
	f.lights.AddPointLight(position, lightRange, color, intensity)
}

func (f *forwardPlusImpl) AddSpotLight(position [3]float32, lightRange float32, direction [3]float32, outerAngle, innerAngle float32, color [3]float32, intensity float32) {
	outerCos, innerCos := spotConeCosines(outerAngle, innerAngle)
	f.lights.AddSpotLight(position, lightRange, direction, outerCos, innerCos, color, intensity)
}

// spotConeCosines converts spot cone half-angles to the cosine pair the light
// buffers store, in the same outer-then-inner order the buffers take them.
func spotConeCosines(outerAngle, innerAngle float32) (outerCos, innerCos float32) {
	return math32.Cos(outerAngle), math32.Cos(innerAngle)
}

func (f *forwardPlusImpl) ClearLights() {
	f.lights.ClearLights()
}

func (f *forwardPlusImpl) CullLights() error {
	f.grid.Update()

	if err := f.culler.Cull(f.grid, f.lights, f.view[:]); err != nil {
		return fmt.Errorf("light culling: %w", err)
	}

	if grid, indices, ok := f.culler.HostResults(); ok {
		writes := []bind_group_provider.BufferWrite{
			{Provider: f.litProvider, Binding: litBindingLightGrid, Data: cluster.MarshalLightGridBuffer(grid)},
		}
		if len(indices) > 0 {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: f.litProvider,
				Binding:  litBindingLightIndices,
				Data:     cluster.MarshalLightIndexBuffer(indices),
			})
		}
		if points := f.lights.PointLights(); len(points) > 0 {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: f.litProvider,
				Binding:  litBindingPointLights,
				Data:     cluster.MarshalPointLightBuffer(points),
			})
		}
		if spots := f.lights.SpotLights(); len(spots) > 0 {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: f.litProvider,
				Binding:  litBindingSpotLights,
				Data:     cluster.MarshalSpotLightBuffer(spots),
			})
		}
		f.r.WriteBuffers(writes)
	}

	f.refreshFrameUniforms()
	return nil
}

func (f *forwardPlusImpl) UpdateCascades() error {
	dir := f.uniforms.SunDirection
	if dir[0] == 0 && dir[1] == 0 && dir[2] == 0 {
		// No sun this frame. Shadows off, lighting continues.
		f.uniforms.Shadow = shadow.GPUShadowUniforms{}
		f.writeFrameUniforms()
		return nil
	}

	if err := f.cascades.UpdateCascades(dir, f.view[:], f.proj[:], f.near, f.far); err != nil {
		return fmt.Errorf("cascade update: %w", err)
	}

	var u shadow.GPUShadowUniforms
	splits := f.cascades.SplitDepths()
	for i := 0; i < f.shadowConfig.CascadeCount; i++ {
		u.CascadeMatrices[i] = f.cascades.CascadeMatrix(i)
		u.Splits[i] = splits[i]
		u.TexelSizes[i] = f.shadowConfig.TexelSize(i)
	}
	u.DepthBias = f.shadowConfig.DepthBias
	u.NormalBias = f.shadowConfig.NormalBiasScale
	u.CascadeCount = uint32(f.shadowConfig.CascadeCount)
	u.PCFRadius = f.shadowConfig.PCFRadius()
	f.uniforms.Shadow = u

	f.writeFrameUniforms()
	return nil
}

func (f *forwardPlusImpl) RenderShadows(fn func(cascade int)) error {
	return f.rasterizer.RenderShadows(f.cascades, fn)
}

// refreshFrameUniforms rebuilds the camera and cluster sections from the
// current frame state and uploads the whole block.
func (f *forwardPlusImpl) refreshFrameUniforms() {
	common.Mul4(f.uniforms.ViewProj[:], f.proj[:], f.view[:])

	var invView [16]float32
	if common.Invert4(invView[:], f.view[:]) {
		f.uniforms.CameraPos = [3]float32{invView[12], invView[13], invView[14]}
	}

	c := &f.uniforms.Cluster
	copy(c.View[:], f.view[:])
	var invProj [16]float32
	if common.Invert4(invProj[:], f.proj[:]) {
		copy(c.InvProj[:], invProj[:])
	}
	c.ScreenWidth = float32(f.width)
	c.ScreenHeight = float32(f.height)
	c.ClusterX = uint32(f.clusterConfig.ClusterX)
	c.ClusterY = uint32(f.clusterConfig.ClusterY)
	c.ClusterZ = uint32(f.clusterConfig.ClusterZ)
	c.Near = f.near
	c.Far = f.far
	c.PointLightCount = uint32(len(f.lights.PointLights()))
	c.SpotLightCount = uint32(len(f.lights.SpotLights()))

	f.writeFrameUniforms()
}

func (f *forwardPlusImpl) writeFrameUniforms() {
	f.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: f.litProvider, Binding: litBindingFrame, Data: f.uniforms.Marshal()},
	})
}

func (f *forwardPlusImpl) CascadeProvider(cascade int) bind_group_provider.BindGroupProvider {
	return f.rasterizer.CascadeProvider(cascade)
}

func (f *forwardPlusImpl) LitProvider() bind_group_provider.BindGroupProvider {
	return f.litProvider
}

func (f *forwardPlusImpl) Grid() cluster.Grid {
	return f.grid
}

func (f *forwardPlusImpl) Lights() cluster.LightBuffers {
	return f.lights
}

func (f *forwardPlusImpl) GPUCullingActive() bool {
	return f.gpuCulling
}

func (f *forwardPlusImpl) FrameUniforms() GPUFrameUniforms {
	return f.uniforms
}

func (f *forwardPlusImpl) Release() {
	if f.litProvider != nil {
		// Shared resources are owned elsewhere: the culler owns the shared
		// storage buffers and the rasterizer owns the depth views and sampler.
		// Strip them so the provider releases only what it created.
		bufs := f.litProvider.Buffers()
		if f.gpuCulling {
			delete(bufs, litBindingLightGrid)
			delete(bufs, litBindingLightIndices)
			delete(bufs, litBindingPointLights)
			delete(bufs, litBindingSpotLights)
		}
		views := f.litProvider.TextureViews()
		for i := 0; i < litShadowMapSlots; i++ {
			delete(views, litBindingShadowMap0+i)
		}
		delete(f.litProvider.Samplers(), litBindingShadowSampler)

		f.litProvider.Release()
		f.litProvider = nil
	}
	if f.rasterizer != nil {
		f.rasterizer.Release()
		f.rasterizer = nil
	}
	if f.culler != nil {
		f.culler.Release()
		f.culler = nil
	}
}
