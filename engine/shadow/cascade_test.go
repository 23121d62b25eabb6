package shadow

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/common"
)

func testCamera(near, far float32) ([]float32, []float32) {
	view := make([]float32, 16)
	common.LookAt(view, 0, 5, 20, 0, 0, 0, 0, 1, 0)
	proj := make([]float32, 16)
	common.Perspective(proj, math32.Pi/4, 16.0/9.0, near, far)
	return view, proj
}

func TestCascadeSplitDistances(t *testing.T) {
	b := NewCascadeBuilder(NewConfig(WithShadowDistance(60)))
	view, proj := testCamera(0.1, 100)

	assert.NoError(t, b.UpdateCascades([3]float32{-0.3, -1, -0.2}, view, proj, 0.1, 100))
	assert.True(t, b.Valid())

	// Splits follow the default [0, 0.1, 0.3, 1] break points over the
	// shadowed range [0.1, 60].
	splits := b.SplitDepths()
	assert.InDelta(t, 6.09, splits[0], 1e-3)
	assert.InDelta(t, 18.07, splits[1], 1e-3)
	assert.InDelta(t, 60.0, splits[2], 1e-3)
	assert.Zero(t, splits[3])
}

func TestCascadeSplitsMonotonic(t *testing.T) {
	b := NewCascadeBuilder(NewConfig())
	view, proj := testCamera(0.5, 300)
	assert.NoError(t, b.UpdateCascades([3]float32{0, -1, 0.5}, view, proj, 0.5, 300))

	splits := b.SplitDepths()
	count := b.Config().CascadeCount
	prev := float32(0)
	for i := 0; i < count; i++ {
		assert.Greater(t, splits[i], prev, "cascade %d", i)
		prev = splits[i]
	}
}

func TestCascadeShadowDistanceCapsRange(t *testing.T) {
	b := NewCascadeBuilder(NewConfig(WithShadowDistance(50)))
	view, proj := testCamera(0.1, 1000)
	assert.NoError(t, b.UpdateCascades([3]float32{0, -1, 0}, view, proj, 0.1, 1000))

	splits := b.SplitDepths()
	assert.InDelta(t, 50, splits[b.Config().CascadeCount-1], 1e-2)
}

func TestCascadeZeroLightDirection(t *testing.T) {
	b := NewCascadeBuilder(NewConfig())
	view, proj := testCamera(0.1, 100)

	assert.Error(t, b.UpdateCascades([3]float32{0, 0, 0}, view, proj, 0.1, 100))
	assert.False(t, b.Valid())

	// A later valid update still succeeds.
	assert.NoError(t, b.UpdateCascades([3]float32{0.2, -1, 0.1}, view, proj, 0.1, 100))
	assert.True(t, b.Valid())
}

func TestCascadeSingularCameraKeepsState(t *testing.T) {
	b := NewCascadeBuilder(NewConfig())
	view, proj := testCamera(0.1, 100)
	assert.NoError(t, b.UpdateCascades([3]float32{0, -1, 0.3}, view, proj, 0.1, 100))
	before := b.CascadeMatrix(0)

	singular := make([]float32, 16)
	assert.Error(t, b.UpdateCascades([3]float32{0, -1, 0.3}, singular, singular, 0.1, 100))
	assert.True(t, b.Valid())
	assert.Equal(t, before, b.CascadeMatrix(0))
}

func TestCascadeVerticalLightUpFallback(t *testing.T) {
	b := NewCascadeBuilder(NewConfig())
	view, proj := testCamera(0.1, 100)

	// A light pointing straight down would be colinear with the usual +Y up
	// vector; the builder must still produce a usable basis.
	assert.NoError(t, b.UpdateCascades([3]float32{0, -1, 0}, view, proj, 0.1, 100))

	lv := b.LightView()
	// The view basis must be orthonormal: transforming unit X and Z must
	// preserve length.
	x := common.TransformDir3(lv[:], 1, 0, 0)
	z := common.TransformDir3(lv[:], 0, 0, 1)
	lenX := math32.Sqrt(x[0]*x[0] + x[1]*x[1] + x[2]*x[2])
	lenZ := math32.Sqrt(z[0]*z[0] + z[1]*z[1] + z[2]*z[2])
	assert.InDelta(t, 1, lenX, 1e-4)
	assert.InDelta(t, 1, lenZ, 1e-4)
}

func TestCascadeCoversItsFrustumSlice(t *testing.T) {
	b := NewCascadeBuilder(NewConfig())
	const near, far = float32(0.1), float32(100)
	view, proj := testCamera(near, far)
	assert.NoError(t, b.UpdateCascades([3]float32{-0.4, -1, -0.3}, view, proj, near, far))

	viewProj := make([]float32, 16)
	common.Mul4(viewProj, proj, view)
	inv := make([]float32, 16)
	assert.True(t, common.Invert4(inv, viewProj))
	corners, ok := common.FrustumCornersWorld(inv)
	assert.True(t, ok)

	cfg := b.Config()
	shadowFar := min(far, cfg.ShadowDistance)
	for i := 0; i < cfg.CascadeCount; i++ {
		splitNear := near + (shadowFar-near)*cfg.CascadeSplits[i]
		splitFar := near + (shadowFar-near)*cfg.CascadeSplits[i+1]
		sliceCorners := common.SliceFrustumCorners(corners, near, far, splitNear, splitFar)

		m := b.CascadeMatrix(i)
		for _, c := range sliceCorners {
			p := common.TransformPoint3(m[:], c[0], c[1], c[2])
			assert.GreaterOrEqual(t, p[0], float32(-1.001), "cascade %d", i)
			assert.LessOrEqual(t, p[0], float32(1.001), "cascade %d", i)
			assert.GreaterOrEqual(t, p[1], float32(-1.001), "cascade %d", i)
			assert.LessOrEqual(t, p[1], float32(1.001), "cascade %d", i)
			assert.GreaterOrEqual(t, p[2], float32(-0.001), "cascade %d", i)
			assert.LessOrEqual(t, p[2], float32(1.001), "cascade %d", i)
		}
	}
}

func TestGPUShadowUniformsLayout(t *testing.T) {
	assert.Equal(t, uintptr(304), unsafe.Sizeof(GPUShadowUniforms{}))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(GPUCascadeUniform{}))

	u := GPUShadowUniforms{
		Splits:       [MaxCascades]float32{10, 30, 100, 0},
		TexelSizes:   [MaxCascades]float32{1.0 / 2048.0, 1.0 / 1024.0, 1.0 / 512.0, 0},
		DepthBias:    0.001,
		NormalBias:   3,
		CascadeCount: 3,
		PCFRadius:    2,
	}
	u.CascadeMatrices[1][0] = 5

	buf := u.Marshal()
	assert.Len(t, buf, 304)

	readF := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(5), readF(64))   // second cascade matrix
	assert.Equal(t, float32(10), readF(256)) // first split
	assert.Equal(t, float32(1.0/2048.0), readF(272))
	assert.Equal(t, float32(1.0/1024.0), readF(276))
	assert.Equal(t, float32(0.001), readF(288))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[296:300]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[300:304]))
}

func TestConfigPCFRadius(t *testing.T) {
	assert.Equal(t, uint32(1), NewConfig().PCFRadius())
	assert.Equal(t, uint32(2), NewConfig(WithPCFKernel(5)).PCFRadius())
	assert.Equal(t, uint32(0), NewConfig(WithPCFKernel(1)).PCFRadius())
	assert.Equal(t, uint32(0), Config{}.PCFRadius())
}

func TestConfigTexelSizePerCascade(t *testing.T) {
	c := NewConfig()
	c.Resolutions = [MaxCascades]int{4096, 2048, 1024, 1024}
	assert.Equal(t, float32(1.0/4096.0), c.TexelSize(0))
	assert.Equal(t, float32(1.0/2048.0), c.TexelSize(1))
	assert.Equal(t, float32(1.0/1024.0), c.TexelSize(2))

	// Unset or out-of-range entries fall back to the default resolution.
	assert.Equal(t, float32(1.0/float32(DefaultResolution)), Config{}.TexelSize(0))
	assert.Equal(t, float32(1.0/float32(DefaultResolution)), c.TexelSize(MaxCascades))
}

func TestShadowDepthShaderCompiles(t *testing.T) {
	if ShadowDepthSource == "" {
		t.Fatal("shadow depth shader source is empty")
	}

	spirv, err := naga.Compile(ShadowDepthSource)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "runtime-sized arrays not yet implemented") {
			t.Skip("Skipping: naga doesn't yet support runtime-sized arrays (needed for storage buffers)")
		}
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile shadow depth shader: %v", err)
	}
	assert.NotEmpty(t, spirv)
}
