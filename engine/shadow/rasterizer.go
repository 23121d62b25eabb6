package shadow

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/radiant-engine/radiant/engine/renderer"
	"github.com/radiant-engine/radiant/engine/renderer/bind_group_provider"
	"github.com/radiant-engine/radiant/engine/renderer/pipeline"
	"github.com/radiant-engine/radiant/engine/renderer/shader"
)

// ShadowPipelineKey is the renderer cache key for the depth-only cascade pipeline.
const ShadowPipelineKey = "shadow_depth"

// shadowBindingCascade is the group 0 binding of the per-cascade uniform.
const shadowBindingCascade = 0

// rasterizerImpl is the unexported implementation of Rasterizer.
type rasterizerImpl struct {
	config Config
	r      renderer.Renderer

	depthViews    []*wgpu.TextureView
	depthTextures []*wgpu.Texture
	sampler       *wgpu.Sampler

	// one provider per cascade: queue writes are ordered before submission,
	// so sequential passes can't share one uniform buffer within a frame
	cascadeProviders []bind_group_provider.BindGroupProvider
}

// Rasterizer owns the shadow map depth targets and runs the depth-only pass
// per cascade. It renders nothing itself; the caller receives the bound pass
// through a callback and iterates its shadow-casting geometry. The shadow
// frame must run before the main color pass so the shading stage samples
// up-to-date maps.
type Rasterizer interface {
	// Config returns the shadow configuration the rasterizer was created with.
	//
	// Returns:
	//   - Config: the shadow configuration
	Config() Config

	// RenderShadows records one depth-only pass per cascade and submits them.
	// The callback runs once per cascade with that cascade's pass bound; the
	// caller issues ShadowDrawCall for each shadow-casting mesh, binding
	// CascadeProvider(cascade) at group 0. A builder without valid cascades
	// (no directional light this frame) is a no-op.
	//
	// Parameters:
	//   - builder: the cascade builder holding this frame's matrices
	//   - fn: per-cascade draw callback
	//
	// Returns:
	//   - error: an error if the shadow command encoder could not be created;
	//     the caller skips shadows for the frame
	RenderShadows(builder CascadeBuilder, fn func(cascade int)) error

	// CascadeProvider returns the bind group provider carrying cascade i's
	// depth-pass uniform (group 0).
	//
	// Parameters:
	//   - cascade: the cascade index in [0, CascadeCount)
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the cascade's uniform provider
	CascadeProvider(cascade int) bind_group_provider.BindGroupProvider

	// DepthView returns cascade i's shadow map view for sampling in the
	// shading stage.
	//
	// Parameters:
	//   - cascade: the cascade index in [0, CascadeCount)
	//
	// Returns:
	//   - *wgpu.TextureView: the depth texture view
	DepthView(cascade int) *wgpu.TextureView

	// Sampler returns the PCF comparison sampler shared by all cascades.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	Sampler() *wgpu.Sampler

	// Release frees the depth textures, sampler, and cascade providers.
	Release()
}

// Compile-time check that rasterizerImpl implements Rasterizer
var _ Rasterizer = &rasterizerImpl{}

// NewRasterizer creates the shadow rasterizer: it registers the depth-only
// pipeline and allocates one depth target and uniform provider per cascade.
// Construction errors name the failing resource; the caller is expected to
// disable shadows and continue rendering without them.
//
// Parameters:
//   - config: the shadow configuration
//   - r: the renderer providing the device and shadow pass encoders
//   - vertexLayouts: the vertex buffer layouts of the meshes that will be
//     drawn into the shadow pass; defaults to an interleaved position+normal
//     layout when omitted
//
// Returns:
//   - Rasterizer: the shadow rasterizer
//   - error: an error if pipeline, texture, or sampler creation fails
func NewRasterizer(config Config, r renderer.Renderer, vertexLayouts ...wgpu.VertexBufferLayout) (Rasterizer, error) {
	if len(vertexLayouts) == 0 {
		vertexLayouts = []wgpu.VertexBufferLayout{DefaultShadowVertexLayout()}
	}

	shadowShader := shader.NewShader(ShadowPipelineKey, shader.ShaderTypeVertex, ShadowDepthSource,
		shader.WithBindGroupLayout(0, CascadeBindGroupLayout()),
		shader.WithBindGroupLayout(1, InstanceBindGroupLayout()),
		shader.WithVertexLayout(0, vertexLayouts...))

	p := pipeline.NewPipeline(ShadowPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shadowShader),
		pipeline.WithCullMode(wgpu.CullModeFront),
		pipeline.WithDepthBias(config.RasterDepthBias, config.RasterDepthBiasSlope))
	if err := r.RegisterShadowPipeline(p); err != nil {
		return nil, fmt.Errorf("shadow depth pipeline: %w", err)
	}

	rz := &rasterizerImpl{
		config:           config,
		r:                r,
		depthViews:       make([]*wgpu.TextureView, config.CascadeCount),
		depthTextures:    make([]*wgpu.Texture, config.CascadeCount),
		cascadeProviders: make([]bind_group_provider.BindGroupProvider, config.CascadeCount),
	}

	for i := 0; i < config.CascadeCount; i++ {
		res := config.Resolutions[i]
		view, tex, err := r.CreateShadowDepthTexture(res, res)
		if err != nil {
			rz.Release()
			return nil, fmt.Errorf("cascade %d depth texture (%d×%d): %w", i, res, res, err)
		}
		rz.depthViews[i] = view
		rz.depthTextures[i] = tex

		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Shadow Cascade %d", i))
		if err := r.InitBindGroup(provider, CascadeBindGroupLayout(), nil, nil); err != nil {
			rz.Release()
			return nil, fmt.Errorf("cascade %d uniform bind group: %w", i, err)
		}
		rz.cascadeProviders[i] = provider
	}

	sampler, err := r.CreateComparisonSampler()
	if err != nil {
		rz.Release()
		return nil, fmt.Errorf("shadow comparison sampler: %w", err)
	}
	rz.sampler = sampler

	return rz, nil
}

// DefaultShadowVertexLayout returns the vertex layout the depth pass assumes
// when the caller does not supply one: the 32-byte position+normal+uv vertex
// produced by the model package, with only the position attribute consumed.
//
// Returns:
//   - wgpu.VertexBufferLayout: the default layout
func DefaultShadowVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
}

// CascadeBindGroupLayout returns the group 0 layout of the depth-only pass:
// one 64-byte uniform holding the cascade matrix.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 0 layout
func CascadeBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Cascade Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    shadowBindingCascade,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
		},
	}
}

// InstanceBindGroupLayout returns the group 1 layout of the depth-only pass:
// the caller's model matrix storage buffer. Callers initialize their instance
// provider against this descriptor so the pipeline layout and bind group agree.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 1 layout
func InstanceBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Instance Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: 64,
				},
			},
		},
	}
}

func (z *rasterizerImpl) Config() Config {
	return z.config
}

func (z *rasterizerImpl) RenderShadows(builder CascadeBuilder, fn func(cascade int)) error {
	if !builder.Valid() {
		return nil
	}

	writes := make([]bind_group_provider.BufferWrite, 0, z.config.CascadeCount)
	for i := 0; i < z.config.CascadeCount; i++ {
		u := GPUCascadeUniform{LightViewProj: builder.CascadeMatrix(i)}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: z.cascadeProviders[i],
			Binding:  shadowBindingCascade,
			Data:     u.Marshal(),
		})
	}
	z.r.WriteBuffers(writes)

	if err := z.r.BeginShadowFrame(); err != nil {
		return fmt.Errorf("shadow frame: %w", err)
	}
	for i := 0; i < z.config.CascadeCount; i++ {
		z.r.BeginShadowPass(z.depthViews[i])
		fn(i)
		z.r.EndShadowPass()
	}
	z.r.EndShadowFrame()

	return nil
}

func (z *rasterizerImpl) CascadeProvider(cascade int) bind_group_provider.BindGroupProvider {
	return z.cascadeProviders[cascade]
}

func (z *rasterizerImpl) DepthView(cascade int) *wgpu.TextureView {
	return z.depthViews[cascade]
}

func (z *rasterizerImpl) Sampler() *wgpu.Sampler {
	return z.sampler
}

func (z *rasterizerImpl) Release() {
	for i, p := range z.cascadeProviders {
		if p != nil {
			p.Release()
			z.cascadeProviders[i] = nil
		}
	}
	for i, v := range z.depthViews {
		if v != nil {
			v.Release()
			z.depthViews[i] = nil
		}
	}
	for i, t := range z.depthTextures {
		if t != nil {
			t.Release()
			z.depthTextures[i] = nil
		}
	}
	if z.sampler != nil {
		z.sampler.Release()
		z.sampler = nil
	}
}
