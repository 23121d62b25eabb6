package cluster

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// SpotLightTag is the high-bit tag on light index entries. Bit 31 set means the
// low 31 bits index the spot light array; bit 31 clear means a point light
// index. This packing is wire format shared with the culling and shading
// shaders and must be preserved bit-exactly.
const SpotLightTag uint32 = 0x80000000

// LightCullSource is the canonical WGSL source of the cluster light culling
// compute shader. Its struct definitions mirror the GPU* types in this file
// byte-for-byte.
//
//go:embed assets/light_cull.wgsl
var LightCullSource string

// GPUPointLight is the GPU-aligned record for one point light.
// Matches the WGSL PointLight struct layout exactly (see LightCullSource).
// Size: 32 bytes (two 16-byte groups).
type GPUPointLight struct {
	Position   [3]float32 // offset  0: world-space position
	LightRange float32    // offset 12: attenuation cutoff distance
	Color      [3]float32 // offset 16: RGB color
	Intensity  float32    // offset 28: scalar multiplier
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPointLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUPointLight) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	return buf
}

// GPUSpotLight is the GPU-aligned record for one spot light. Cone angles are
// stored as cosines of the half-angles so the shader compares dot products
// directly. Matches the WGSL SpotLight struct layout exactly.
// Size: 64 bytes (four 16-byte groups).
type GPUSpotLight struct {
	Position   [3]float32 // offset  0: world-space apex position
	LightRange float32    // offset 12: attenuation cutoff distance
	Direction  [3]float32 // offset 16: normalized cone axis
	OuterCos   float32    // offset 28: cos(outer half-angle)
	Color      [3]float32 // offset 32: RGB color
	Intensity  float32    // offset 44: scalar multiplier
	InnerCos   float32    // offset 48: cos(inner half-angle)
	_pad       [3]float32 // offset 52: padding to 64-byte alignment
}

// Size returns the size of the GPUSpotLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSpotLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpotLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUSpotLight) Marshal() []byte {
	buf := make([]byte, 64)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.OuterCos))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.InnerCos))
	binary.LittleEndian.PutUint32(buf[52:56], 0) // padding
	binary.LittleEndian.PutUint32(buf[56:60], 0) // padding
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
	return buf
}

// GPUClusterAABB is the GPU-aligned view-space bounding box of one cluster.
// Matches the WGSL ClusterAABB struct layout exactly.
// Size: 32 bytes (two vec4, w unused).
type GPUClusterAABB struct {
	Min   [3]float32 // offset  0: view-space minimum corner
	_pad0 float32    // offset 12: padding
	Max   [3]float32 // offset 16: view-space maximum corner
	_pad1 float32    // offset 28: padding
}

// Size returns the size of the GPUClusterAABB struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUClusterAABB) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUClusterAABB struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUClusterAABB) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Min[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Min[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Min[2]))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // padding
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Max[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Max[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Max[2]))
	binary.LittleEndian.PutUint32(buf[28:32], 0) // padding
	return buf
}

// GPULightGrid is the per-cluster entry of the light grid buffer: a slice of
// the global light index array. Invariants: Offset+Count never exceeds the
// index array capacity and Count never exceeds MaxLightsPerCluster.
// Size: 8 bytes (two u32).
type GPULightGrid struct {
	Offset uint32 // offset 0: first index in the global light index array
	Count  uint32 // offset 4: number of lights assigned to the cluster
}

// Size returns the size of the GPULightGrid struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPULightGrid) Size() int {
	return int(unsafe.Sizeof(*g))
}

// GPUClusterUniforms is the clustered-lighting section of the per-frame
// uniform block. Matches the cluster section of the WGSL FrameUniforms struct
// exactly. Size: 176 bytes.
type GPUClusterUniforms struct {
	View            [16]float32 // offset   0: camera view matrix, column-major
	InvProj         [16]float32 // offset  64: inverse camera projection, column-major
	ScreenWidth     float32     // offset 128: viewport width in pixels
	ScreenHeight    float32     // offset 132: viewport height in pixels
	ClusterX        uint32      // offset 136: cluster grid X dimension
	ClusterY        uint32      // offset 140: cluster grid Y dimension
	ClusterZ        uint32      // offset 144: cluster grid Z dimension
	Near            float32     // offset 148: camera near plane
	Far             float32     // offset 152: camera far plane
	PointLightCount uint32      // offset 156: active point lights this frame
	SpotLightCount  uint32      // offset 160: active spot lights this frame
	_pad            [3]uint32   // offset 164: padding to 176-byte alignment
}

// Size returns the size of the GPUClusterUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (176)
func (u *GPUClusterUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUClusterUniforms struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 176-byte buffer ready for GPU upload
func (u *GPUClusterUniforms) Marshal() []byte {
	buf := make([]byte, 176)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(u.View[i]))
	}
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(u.InvProj[i]))
	}
	binary.LittleEndian.PutUint32(buf[128:132], math.Float32bits(u.ScreenWidth))
	binary.LittleEndian.PutUint32(buf[132:136], math.Float32bits(u.ScreenHeight))
	binary.LittleEndian.PutUint32(buf[136:140], u.ClusterX)
	binary.LittleEndian.PutUint32(buf[140:144], u.ClusterY)
	binary.LittleEndian.PutUint32(buf[144:148], u.ClusterZ)
	binary.LittleEndian.PutUint32(buf[148:152], math.Float32bits(u.Near))
	binary.LittleEndian.PutUint32(buf[152:156], math.Float32bits(u.Far))
	binary.LittleEndian.PutUint32(buf[156:160], u.PointLightCount)
	binary.LittleEndian.PutUint32(buf[160:164], u.SpotLightCount)
	// bytes 164..176 remain zero padding
	return buf
}

// GPUCullUniforms is the uniform block for the light culling compute dispatch.
// Matches the WGSL CullUniforms struct layout exactly.
// Size: 96 bytes.
type GPUCullUniforms struct {
	View                [16]float32 // offset  0: camera view matrix, column-major
	ClusterX            uint32      // offset 64: cluster grid X dimension
	ClusterY            uint32      // offset 68: cluster grid Y dimension
	ClusterZ            uint32      // offset 72: cluster grid Z dimension
	MaxLightsPerCluster uint32      // offset 76: per-cluster light index cap
	PointLightCount     uint32      // offset 80: active point lights this frame
	SpotLightCount      uint32      // offset 84: active spot lights this frame
	_pad                [2]uint32   // offset 88: padding to 96-byte alignment
}

// Size returns the size of the GPUCullUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (u *GPUCullUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUCullUniforms struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (u *GPUCullUniforms) Marshal() []byte {
	buf := make([]byte, 96)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(u.View[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:68], u.ClusterX)
	binary.LittleEndian.PutUint32(buf[68:72], u.ClusterY)
	binary.LittleEndian.PutUint32(buf[72:76], u.ClusterZ)
	binary.LittleEndian.PutUint32(buf[76:80], u.MaxLightsPerCluster)
	binary.LittleEndian.PutUint32(buf[80:84], u.PointLightCount)
	binary.LittleEndian.PutUint32(buf[84:88], u.SpotLightCount)
	// bytes 88..96 remain zero padding
	return buf
}

// MarshalPointLightBuffer serializes a point light slice into a contiguous
// byte buffer for GPU storage upload.
//
// Parameters:
//   - lights: the point lights to serialize
//
// Returns:
//   - []byte: len(lights)*32 bytes ready for GPU upload
func MarshalPointLightBuffer(lights []GPUPointLight) []byte {
	buf := make([]byte, 0, len(lights)*32)
	for i := range lights {
		buf = append(buf, lights[i].Marshal()...)
	}
	return buf
}

// MarshalSpotLightBuffer serializes a spot light slice into a contiguous byte
// buffer for GPU storage upload.
//
// Parameters:
//   - lights: the spot lights to serialize
//
// Returns:
//   - []byte: len(lights)*64 bytes ready for GPU upload
func MarshalSpotLightBuffer(lights []GPUSpotLight) []byte {
	buf := make([]byte, 0, len(lights)*64)
	for i := range lights {
		buf = append(buf, lights[i].Marshal()...)
	}
	return buf
}

// MarshalAABBBuffer serializes a cluster AABB slice into a contiguous byte
// buffer for GPU storage upload.
//
// Parameters:
//   - aabbs: the cluster AABBs to serialize
//
// Returns:
//   - []byte: len(aabbs)*32 bytes ready for GPU upload
func MarshalAABBBuffer(aabbs []GPUClusterAABB) []byte {
	buf := make([]byte, 0, len(aabbs)*32)
	for i := range aabbs {
		buf = append(buf, aabbs[i].Marshal()...)
	}
	return buf
}

// MarshalLightGridBuffer serializes a light grid slice into a contiguous byte
// buffer for GPU storage upload.
//
// Parameters:
//   - grid: the light grid entries to serialize
//
// Returns:
//   - []byte: len(grid)*8 bytes ready for GPU upload
func MarshalLightGridBuffer(grid []GPULightGrid) []byte {
	buf := make([]byte, len(grid)*8)
	for i := range grid {
		binary.LittleEndian.PutUint32(buf[i*8:i*8+4], grid[i].Offset)
		binary.LittleEndian.PutUint32(buf[i*8+4:i*8+8], grid[i].Count)
	}
	return buf
}

// MarshalLightIndexBuffer serializes the global light index array into a byte
// buffer for GPU storage upload.
//
// Parameters:
//   - indices: the tagged light indices to serialize
//
// Returns:
//   - []byte: len(indices)*4 bytes ready for GPU upload
func MarshalLightIndexBuffer(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], v)
	}
	return buf
}
