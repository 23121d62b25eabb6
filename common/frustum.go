package common

// ndcCorners are the eight corners of the WebGPU clip-space cube in
// (x, y, z) order: the four near-plane corners (z = 0) followed by the four
// far-plane corners (z = 1). X/Y span [-1, 1].
var ndcCorners = [8][3]float32{
	{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// FrustumCornersWorld unprojects the eight clip-space cube corners through the
// inverse of a camera view-projection matrix, yielding the world-space corners
// of the full camera frustum. Corners 0–3 lie on the near plane, corners 4–7
// on the far plane, with corner i+4 on the same frustum edge as corner i.
//
// Parameters:
//   - invViewProj: inverse of projection*view (16 elements, column-major)
//
// Returns:
//   - [8][3]float32: world-space frustum corners (near quad, then far quad)
//   - bool: false if any corner's perspective divide degenerated (w ≈ 0)
func FrustumCornersWorld(invViewProj []float32) ([8][3]float32, bool) {
	var out [8][3]float32
	for i, c := range ndcCorners {
		p := TransformPoint4(invViewProj, c[0], c[1], c[2])
		w := p[3]
		if w > -1e-8 && w < 1e-8 {
			return out, false
		}
		inv := 1.0 / w
		out[i] = [3]float32{p[0] * inv, p[1] * inv, p[2] * inv}
	}
	return out, true
}

// SliceFrustumCorners interpolates full-frustum corners down to the corners of
// a depth sub-slice. View-space depth is linear along each frustum edge, so a
// corner at view depth d lies at fraction (d - near) / (far - near) between
// the matching near and far corners.
//
// Parameters:
//   - corners: full-frustum world-space corners from FrustumCornersWorld
//   - near, far: the camera's near and far plane distances
//   - sliceNear, sliceFar: the sub-slice depth range, in [near, far]
//
// Returns:
//   - [8][3]float32: world-space corners of the sub-slice (near quad, far quad)
func SliceFrustumCorners(corners [8][3]float32, near, far, sliceNear, sliceFar float32) [8][3]float32 {
	invRange := float32(0)
	if far != near {
		invRange = 1.0 / (far - near)
	}
	tNear := (sliceNear - near) * invRange
	tFar := (sliceFar - near) * invRange

	var out [8][3]float32
	for i := 0; i < 4; i++ {
		n := corners[i]
		f := corners[i+4]
		for a := 0; a < 3; a++ {
			edge := f[a] - n[a]
			out[i][a] = n[a] + edge*tNear
			out[i+4][a] = n[a] + edge*tFar
		}
	}
	return out
}
