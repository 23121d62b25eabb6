package forward

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/radiant-engine/radiant/engine/cluster"
	"github.com/radiant-engine/radiant/engine/shadow"
)

// ForwardLitSource is the canonical WGSL source of the clustered shading
// pipeline. Bindings must match LitBindGroupLayout and the offsets documented
// on GPUFrameUniforms.
//
//go:embed assets/forward_lit.wgsl
var ForwardLitSource string

// Section offsets inside the merged frame uniform block. The header carries
// the camera and sun, the cluster and shadow sections are the blocks the
// cluster and shadow packages marshal.
const (
	frameHeaderSize    = 112
	frameClusterOffset = frameHeaderSize
	frameShadowOffset  = frameClusterOffset + 176
	frameUniformsSize  = frameShadowOffset + 304
)

// GPUFrameUniforms is the single merged per-frame uniform block bound to the
// shading pipeline. Camera, sun, cluster parameters, and cascade shadow state
// all live in one binding so the pipeline stays within tight per-stage
// uniform binding limits. Matches the WGSL FrameUniforms struct exactly.
// Size: 592 bytes.
type GPUFrameUniforms struct {
	ViewProj         [16]float32                // offset   0: projection * view, column-major
	CameraPos        [3]float32                 // offset  64: camera world position
	_pad0            float32                    // offset  76: padding
	SunDirection     [3]float32                 // offset  80: world-space direction the sun shines toward
	SunIntensity     float32                    // offset  92: sun radiance scale
	SunColor         [3]float32                 // offset  96: sun light color
	AmbientIntensity float32                    // offset 108: flat ambient term
	Cluster          cluster.GPUClusterUniforms // offset 112: clustered lighting section
	Shadow           shadow.GPUShadowUniforms   // offset 288: cascade shadow section
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (592)
func (u *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUFrameUniforms struct into a byte buffer suitable
// for GPU uniform upload. The cluster and shadow sections are marshaled by
// their own packages so the layouts cannot drift from the culling and shadow
// code that writes them.
//
// Returns:
//   - []byte: 592-byte buffer ready for GPU upload
func (u *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, frameUniformsSize)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(u.ViewProj[i]))
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(u.CameraPos[i]))
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[80+i*4:80+(i+1)*4], math.Float32bits(u.SunDirection[i]))
	}
	binary.LittleEndian.PutUint32(buf[92:96], math.Float32bits(u.SunIntensity))
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[96+i*4:96+(i+1)*4], math.Float32bits(u.SunColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[108:112], math.Float32bits(u.AmbientIntensity))
	copy(buf[frameClusterOffset:frameShadowOffset], u.Cluster.Marshal())
	copy(buf[frameShadowOffset:], u.Shadow.Marshal())
	return buf
}
