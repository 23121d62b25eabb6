package model

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestGPUVertexSize(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(GPUVertex{}))
}

func TestMarshalVertices(t *testing.T) {
	vertices := []GPUVertex{
		{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.5, 0.25}},
		{Position: [3]float32{-1, 0, 4}, Normal: [3]float32{0, 0, 1}},
	}
	buf := MarshalVertices(vertices)
	assert.Len(t, buf, 64)

	readF := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(3), readF(8))     // first position z
	assert.Equal(t, float32(1), readF(16))    // first normal y
	assert.Equal(t, float32(0.25), readF(28)) // first uv v
	assert.Equal(t, float32(-1), readF(32))   // second vertex starts at 32
}

func TestMarshalIndices(t *testing.T) {
	buf := MarshalIndices([]uint32{0, 2, 1})
	assert.Len(t, buf, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[4:8]))
}

func TestNewCubeModel(t *testing.T) {
	cube := NewCubeModel("cube", 2)
	assert.Equal(t, "cube", cube.Name())
	assert.Equal(t, 36, cube.IndexCount())
	assert.Len(t, cube.VertexData(), 24*32)
	assert.Len(t, cube.IndexData(), 36*4)
	assert.NotNil(t, cube.MeshProvider())

	// The farthest corner sits at sqrt(3)*halfExtent from the center.
	assert.InDelta(t, math32.Sqrt(3)*2, cube.BoundingRadius(), 1e-4)
}

func TestNewPlaneModelFacesUp(t *testing.T) {
	plane := NewPlaneModel("ground", 10)
	assert.Equal(t, 6, plane.IndexCount())
	assert.Len(t, plane.VertexData(), 4*32)

	// Every vertex normal is +Y.
	buf := plane.VertexData()
	for i := 0; i < 4; i++ {
		base := i*32 + 12
		ny := math.Float32frombits(binary.LittleEndian.Uint32(buf[base+4 : base+8]))
		assert.Equal(t, float32(1), ny, "vertex %d", i)
	}
}

func TestModelBuilderOptions(t *testing.T) {
	m := NewModel(
		WithName("custom"),
		WithMeshData([]byte{1, 2, 3, 4}, []byte{5, 6, 7, 8}, 1),
		WithBoundingRadius(9),
	)
	assert.Equal(t, "custom", m.Name())
	assert.Equal(t, 1, m.IndexCount())
	assert.Equal(t, float32(9), m.BoundingRadius())
}
