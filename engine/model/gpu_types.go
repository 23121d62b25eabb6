package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertex is the GPU-aligned representation of a single static mesh vertex.
// Matches the vertex buffer layout the shading and shadow pipelines consume:
// position at shader location 0, normal at location 1. The texture coordinate
// rides along for pipelines that want it.
// Size: 32 bytes, no padding.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space
	Normal   [3]float32 // offset 12: vertex normal for lighting
	TexCoord [2]float32 // offset 24: UV texture coordinate
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (v *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// MarshalVertices serializes a vertex slice into a contiguous byte buffer for
// GPU vertex buffer upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*32 bytes ready for GPU upload
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*32)
	for i, v := range vertices {
		base := i * 32
		binary.LittleEndian.PutUint32(buf[base:base+4], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(buf[base+4:base+8], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(buf[base+8:base+12], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(buf[base+12:base+16], math.Float32bits(v.Normal[0]))
		binary.LittleEndian.PutUint32(buf[base+16:base+20], math.Float32bits(v.Normal[1]))
		binary.LittleEndian.PutUint32(buf[base+20:base+24], math.Float32bits(v.Normal[2]))
		binary.LittleEndian.PutUint32(buf[base+24:base+28], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(buf[base+28:base+32], math.Float32bits(v.TexCoord[1]))
	}
	return buf
}

// MarshalIndices serializes an index slice into a contiguous byte buffer for
// GPU index buffer upload (32-bit indices).
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: len(indices)*4 bytes ready for GPU upload
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], idx)
	}
	return buf
}
