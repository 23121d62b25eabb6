package game_object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radiant-engine/radiant/engine/light"
)

func TestGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()
	assert.True(t, obj.Enabled())
	assert.True(t, obj.CastsShadows())
	assert.False(t, obj.Ephemeral())

	sx, sy, sz := obj.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
}

func TestGameObjectAdvanceAppliesRotationSpeed(t *testing.T) {
	obj := NewGameObject(
		WithRotation(0, 1, 0),
		WithRotationSpeed(0, 0.5, 2),
	)
	obj.Advance(2)

	_, ry, rz := obj.Rotation()
	assert.InDelta(t, 2, ry, 1e-6)
	assert.InDelta(t, 4, rz, 1e-6)
}

func TestGameObjectModelMatrixTranslation(t *testing.T) {
	obj := NewGameObject(WithPosition(3, -2, 7))

	out := make([]float32, 16)
	obj.ModelMatrix(out)
	assert.Equal(t, float32(3), out[12])
	assert.Equal(t, float32(-2), out[13])
	assert.Equal(t, float32(7), out[14])
	assert.Equal(t, float32(1), out[15])
	// No rotation or scale: upper-left stays identity.
	assert.Equal(t, float32(1), out[0])
	assert.Equal(t, float32(1), out[5])
	assert.Equal(t, float32(1), out[10])
}

func TestGameObjectAttachedLight(t *testing.T) {
	pl := light.NewLight(light.LightTypePoint,
		light.WithRange(10),
		light.WithEnabled(true),
	)
	obj := NewGameObject(WithLight(pl))
	assert.Equal(t, pl, obj.Light())
}

func TestGameObjectEnabledToggle(t *testing.T) {
	obj := NewGameObject(WithEnabled(false))
	assert.False(t, obj.Enabled())
	obj.SetEnabled(true)
	assert.True(t, obj.Enabled())
}
