package forward

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/engine/cluster"
	"github.com/radiant-engine/radiant/engine/shadow"
)

func TestGPUFrameUniformsSize(t *testing.T) {
	assert.Equal(t, uintptr(592), unsafe.Sizeof(GPUFrameUniforms{}))

	// Section offsets are wire format shared with the WGSL FrameUniforms
	// struct and must never drift.
	assert.Equal(t, uintptr(112), unsafe.Offsetof(GPUFrameUniforms{}.Cluster))
	assert.Equal(t, uintptr(288), unsafe.Offsetof(GPUFrameUniforms{}.Shadow))
}

func TestGPUFrameUniformsMarshalSections(t *testing.T) {
	var u GPUFrameUniforms
	u.ViewProj[0] = 2
	u.CameraPos = [3]float32{1, 2, 3}
	u.SunDirection = [3]float32{0, -1, 0}
	u.SunIntensity = 1.5
	u.SunColor = [3]float32{1, 0.9, 0.8}
	u.AmbientIntensity = 0.05
	u.Cluster.View[0] = 7
	u.Cluster.PointLightCount = 9
	u.Shadow.CascadeCount = 3
	u.Shadow.Splits[0] = 12
	u.Shadow.TexelSizes[1] = 1.0 / 1024.0
	u.Shadow.PCFRadius = 2

	buf := u.Marshal()
	assert.Len(t, buf, 592)

	readF := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(2), readF(0))      // ViewProj[0]
	assert.Equal(t, float32(1), readF(64))     // CameraPos.x
	assert.Equal(t, float32(-1), readF(84))    // SunDirection.y
	assert.Equal(t, float32(1.5), readF(92))   // SunIntensity
	assert.Equal(t, float32(0.05), readF(108)) // AmbientIntensity

	// Cluster section starts at 112, shadow section at 288.
	assert.Equal(t, float32(7), readF(112))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(buf[112+156:112+160]))
	assert.Equal(t, float32(12), readF(288+256))
	assert.Equal(t, float32(1.0/1024.0), readF(288+276))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[288+296:288+300]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[288+300:288+304]))
}

func TestLitBindGroupLayoutSingleUniform(t *testing.T) {
	layout := LitBindGroupLayout(cluster.NewConfig())
	assert.Len(t, layout.Entries, 9)

	uniforms := 0
	for _, entry := range layout.Entries {
		if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
			uniforms++
			assert.Equal(t, uint32(0), entry.Binding)
			assert.Equal(t, uint64(592), entry.Buffer.MinBindingSize)
		}
	}
	// The merged frame block keeps the color pass at one uniform binding.
	assert.Equal(t, 1, uniforms)
}

func TestLitBindGroupLayoutStorageSizes(t *testing.T) {
	config := cluster.NewConfig()
	layout := LitBindGroupLayout(config)

	sizes := map[uint32]uint64{}
	for _, entry := range layout.Entries {
		if entry.Buffer.Type == wgpu.BufferBindingTypeReadOnlyStorage {
			sizes[entry.Binding] = entry.Buffer.MinBindingSize
		}
	}
	assert.Equal(t, uint64(config.TotalClusters()*8), sizes[litBindingLightGrid])
	assert.Equal(t, uint64(config.MaxLightIndices()*4), sizes[litBindingLightIndices])
	assert.Equal(t, uint64(config.MaxTotalLights*32), sizes[litBindingPointLights])
	assert.Equal(t, uint64(config.MaxTotalLights*64), sizes[litBindingSpotLights])
}

func TestDefaultVertexLayouts(t *testing.T) {
	lit := DefaultVertexLayout()
	assert.Equal(t, uint64(32), lit.ArrayStride)

	depth := shadow.DefaultShadowVertexLayout()
	assert.Equal(t, uint64(32), depth.ArrayStride)
	assert.Equal(t, lit.Attributes[0].Offset, depth.Attributes[0].Offset)
}

func TestSpotConeCosinesOrder(t *testing.T) {
	// Arguments run outer-then-inner, matching the light buffer signature.
	// The outer cone is wider, so its cosine must be the smaller value.
	outerCos, innerCos := spotConeCosines(math32.Pi/4, math32.Pi/6)
	assert.InDelta(t, math32.Cos(math32.Pi/4), outerCos, 1e-6)
	assert.InDelta(t, math32.Cos(math32.Pi/6), innerCos, 1e-6)
	assert.Less(t, outerCos, innerCos)
}

func TestForwardLitShaderCompiles(t *testing.T) {
	if ForwardLitSource == "" {
		t.Fatal("forward lit shader source is empty")
	}

	spirv, err := naga.Compile(ForwardLitSource)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "runtime-sized arrays not yet implemented") {
			t.Skip("Skipping: naga doesn't yet support runtime-sized arrays (needed for storage buffers)")
		}
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile forward lit shader: %v", err)
	}
	assert.NotEmpty(t, spirv)
}
