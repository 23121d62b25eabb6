package cluster

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
)

func TestGPURecordSizes(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(GPUPointLight{}))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(GPUSpotLight{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(GPUClusterAABB{}))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(GPULightGrid{}))
	assert.Equal(t, uintptr(176), unsafe.Sizeof(GPUClusterUniforms{}))
	assert.Equal(t, uintptr(96), unsafe.Sizeof(GPUCullUniforms{}))
}

func TestGPUSpotLightMarshalOffsets(t *testing.T) {
	l := GPUSpotLight{
		Position:   [3]float32{1, 2, 3},
		LightRange: 40,
		Direction:  [3]float32{0, -1, 0},
		OuterCos:   0.8,
		Color:      [3]float32{0.5, 0.6, 0.7},
		Intensity:  2,
		InnerCos:   0.9,
	}
	buf := l.Marshal()
	assert.Len(t, buf, 64)

	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(3), read(8))    // Position.z
	assert.Equal(t, float32(40), read(12))  // LightRange
	assert.Equal(t, float32(-1), read(20))  // Direction.y
	assert.Equal(t, float32(0.8), read(28)) // OuterCos
	assert.Equal(t, float32(2), read(44))   // Intensity
	assert.Equal(t, float32(0.9), read(48)) // InnerCos
	assert.Equal(t, float32(0), read(60))   // trailing pad
}

func TestMarshalLightIndexBuffer(t *testing.T) {
	indices := []uint32{3, SpotLightTag | 1, 0}
	buf := MarshalLightIndexBuffer(indices)
	assert.Len(t, buf, 12)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, SpotLightTag|1, binary.LittleEndian.Uint32(buf[4:8]))
}

func TestGPUClusterUniformsMarshal(t *testing.T) {
	u := GPUClusterUniforms{
		ScreenWidth:     1920,
		ScreenHeight:    1080,
		ClusterX:        16,
		ClusterY:        9,
		ClusterZ:        24,
		Near:            0.1,
		Far:             100,
		PointLightCount: 7,
		SpotLightCount:  2,
	}
	u.View[0] = 1
	u.InvProj[15] = 4

	buf := u.Marshal()
	assert.Len(t, buf, 176)
	assert.Equal(t, math.Float32bits(1), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, math.Float32bits(4), binary.LittleEndian.Uint32(buf[124:128]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(buf[136:140]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[156:160]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[160:164]))
}

func TestLightCullShaderCompiles(t *testing.T) {
	if LightCullSource == "" {
		t.Fatal("light cull shader source is empty")
	}

	spirv, err := naga.Compile(LightCullSource)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "runtime-sized arrays not yet implemented") {
			t.Skip("Skipping: naga doesn't yet support runtime-sized arrays (needed for storage buffers)")
		}
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile light cull shader: %v", err)
	}
	assert.NotEmpty(t, spirv)
}
