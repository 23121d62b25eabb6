package shadow

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// ShadowDepthSource is the canonical WGSL source of the depth-only cascade
// vertex shader.
//
//go:embed assets/shadow_depth.wgsl
var ShadowDepthSource string

// GPUCascadeUniform is the per-cascade uniform for the depth-only pass.
// Matches the WGSL CascadeUniforms struct layout exactly.
// Size: 64 bytes.
type GPUCascadeUniform struct {
	LightViewProj [16]float32 // offset 0: ortho * lightView for this cascade, column-major
}

// Size returns the size of the GPUCascadeUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (u *GPUCascadeUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUCascadeUniform struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (u *GPUCascadeUniform) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(u.LightViewProj[i]))
	}
	return buf
}

// GPUShadowUniforms is the cascade shadow section of the per-frame uniform
// block consumed by the shading stage. It is appended after the Forward+
// cluster section in the same uniform buffer so the shading stage stays within
// a 4-uniform-binding per-stage budget. An all-zero block (CascadeCount 0)
// means shadows are disabled and the shading stage treats every fragment as
// fully lit.
// Size: 304 bytes.
type GPUShadowUniforms struct {
	CascadeMatrices [MaxCascades][16]float32 // offset   0: per-cascade ortho*lightView, column-major
	Splits          [MaxCascades]float32     // offset 256: view-space far boundary per cascade
	TexelSizes      [MaxCascades]float32     // offset 272: per-cascade shadow map texel size in UV units
	DepthBias       float32                  // offset 288: constant comparison bias
	NormalBias      float32                  // offset 292: world-space normal offset distance
	CascadeCount    uint32                   // offset 296: active cascades, 0 = shadows disabled
	PCFRadius       uint32                   // offset 300: PCF tap radius, kernel width = 2*radius+1
}

// Size returns the size of the GPUShadowUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (304)
func (u *GPUShadowUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUShadowUniforms struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 304-byte buffer ready for GPU upload
func (u *GPUShadowUniforms) Marshal() []byte {
	buf := make([]byte, 304)
	for c := 0; c < MaxCascades; c++ {
		base := c * 64
		for i := 0; i < 16; i++ {
			binary.LittleEndian.PutUint32(buf[base+i*4:base+(i+1)*4], math.Float32bits(u.CascadeMatrices[c][i]))
		}
	}
	for i := 0; i < MaxCascades; i++ {
		binary.LittleEndian.PutUint32(buf[256+i*4:256+(i+1)*4], math.Float32bits(u.Splits[i]))
	}
	for i := 0; i < MaxCascades; i++ {
		binary.LittleEndian.PutUint32(buf[272+i*4:272+(i+1)*4], math.Float32bits(u.TexelSizes[i]))
	}
	binary.LittleEndian.PutUint32(buf[288:292], math.Float32bits(u.DepthBias))
	binary.LittleEndian.PutUint32(buf[292:296], math.Float32bits(u.NormalBias))
	binary.LittleEndian.PutUint32(buf[296:300], u.CascadeCount)
	binary.LittleEndian.PutUint32(buf[300:304], u.PCFRadius)
	return buf
}
