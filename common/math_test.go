package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func mul4Point(m []float32, x, y, z float32) (float32, float32, float32, float32) {
	px := m[0]*x + m[4]*y + m[8]*z + m[12]
	py := m[1]*x + m[5]*y + m[9]*z + m[13]
	pz := m[2]*x + m[6]*y + m[10]*z + m[14]
	pw := m[3]*x + m[7]*y + m[11]*z + m[15]
	return px, py, pz, pw
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i)
	}
	Identity(m)
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.Equal(t, want, m[i], "element %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	ident := make([]float32, 16)
	Identity(ident)

	m := make([]float32, 16)
	Perspective(m, math32.Pi/4, 16.0/9.0, 0.1, 100)

	out := make([]float32, 16)
	Mul4(out, ident, m)
	assert.Equal(t, m, out)

	Mul4(out, m, ident)
	assert.Equal(t, m, out)
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	Perspective(m, math32.Pi/3, 1.5, 0.5, 200)

	inv := make([]float32, 16)
	assert.True(t, Invert4(inv, m))

	out := make([]float32, 16)
	Mul4(out, inv, m)
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.InDelta(t, want, out[i], 1e-4, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	m := make([]float32, 16) // all zeros
	inv := make([]float32, 16)
	assert.False(t, Invert4(inv, m))
}

func TestLookAtTransformsEyeToOrigin(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, 5, 3, -2, 0, 0, 0, 0, 1, 0)

	x, y, z, _ := mul4Point(m, 5, 3, -2)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)
}

func TestLookAtViewDirection(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, 0, 0, 10, 0, 0, 0, 0, 1, 0)

	// The target sits in front of the eye, which is -Z in view space.
	_, _, z, _ := mul4Point(m, 0, 0, 0)
	assert.InDelta(t, -10, z, 1e-5)
}

func TestPerspectiveDepthRange(t *testing.T) {
	const near, far = 0.1, 100.0
	m := make([]float32, 16)
	Perspective(m, math32.Pi/4, 1, near, far)

	// WebGPU clip space maps near to depth 0 and far to depth 1.
	_, _, zn, wn := mul4Point(m, 0, 0, -near)
	assert.InDelta(t, 0, zn/wn, 1e-5)

	_, _, zf, wf := mul4Point(m, 0, 0, -far)
	assert.InDelta(t, 1, zf/wf, 1e-4)
}

func TestOrthoMapsBoxToClip(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, -10, 10, -5, 5, 1, 50)

	x, y, z, w := mul4Point(m, -10, -5, -1)
	assert.InDelta(t, 1, w, 1e-6)
	assert.InDelta(t, -1, x, 1e-5)
	assert.InDelta(t, -1, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)

	x, y, z, _ = mul4Point(m, 10, 5, -50)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)
	assert.InDelta(t, 1, z, 1e-5)
}

func TestNormalize3(t *testing.T) {
	v := Normalize3(3, 0, 4)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.0, v[1], 1e-6)
	assert.InDelta(t, 0.8, v[2], 1e-6)

	zero := Normalize3(0, 0, 0)
	assert.Equal(t, [3]float32{0, 0, 0}, zero)
}

func TestTransformPoint3VsDir3(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[12], m[13], m[14] = 1, 2, 3 // translation

	p := TransformPoint3(m, 1, 0, 0)
	assert.Equal(t, [3]float32{2, 2, 3}, p)

	// Directions ignore translation.
	d := TransformDir3(m, 1, 0, 0)
	assert.Equal(t, [3]float32{1, 0, 0}, d)
}

func TestFrustumCornersWorldRecoversBox(t *testing.T) {
	const near, far = 1.0, 10.0
	proj := make([]float32, 16)
	Perspective(proj, math32.Pi/2, 1, near, far)

	view := make([]float32, 16)
	Identity(view)

	viewProj := make([]float32, 16)
	Mul4(viewProj, proj, view)
	inv := make([]float32, 16)
	assert.True(t, Invert4(inv, viewProj))

	corners, ok := FrustumCornersWorld(inv)
	assert.True(t, ok)

	// With a 90° fov the near plane half-extent equals the near distance.
	minZ, maxZ := corners[0][2], corners[0][2]
	for _, c := range corners {
		minZ = min(minZ, c[2])
		maxZ = max(maxZ, c[2])
	}
	assert.InDelta(t, -far, minZ, 1e-2)
	assert.InDelta(t, -near, maxZ, 1e-4)
}

func TestSliceFrustumCornersInterpolates(t *testing.T) {
	corners := [8][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-10, -10, -10}, {10, -10, -10}, {10, 10, -10}, {-10, 10, -10},
	}
	sliced := SliceFrustumCorners(corners, 1, 10, 1, 10)
	assert.Equal(t, corners, sliced)

	half := SliceFrustumCorners(corners, 1, 10, 1, 5.5)
	assert.InDelta(t, -5.5, half[4][2], 1e-5)
	assert.InDelta(t, -5.5, half[4][0], 1e-5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(2), Clamp(1, 2, 5))
	assert.Equal(t, float32(5), Clamp(9, 2, 5))
	assert.Equal(t, float32(3), Clamp(3, 2, 5))
}
