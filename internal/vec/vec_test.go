package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_Neighbours(t *testing.T) {
	v := Vec3{X: 2, Y: 1, Z: 3}

	assert.Equal(t, Vec3{X: 2, Y: 0, Z: 3}, v.Below())
	assert.Equal(t, Vec3{X: 2, Y: 2, Z: 3}, v.Above())
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: 5}, v.Add(Vec3{X: 1, Z: 2}))
	assert.Equal(t, "(2,1,3)", v.String())
}

func TestVec3_Horizontal(t *testing.T) {
	v := Vec3{X: 2, Y: 4, Z: 3}

	assert.Equal(t, Vec2{X: 2, Z: 3}, v.Horizontal())
	assert.Equal(t, Vec3{X: -1, Y: 4, Z: 5}, v.WithHorizontal(Vec2{X: -1, Z: 5}))
}

func TestVec2Float_Sub(t *testing.T) {
	p := Vec2Float{X: 2.5, Z: 1}
	assert.Equal(t, Vec2Float{X: 2, Z: 0.5}, p.Sub(Vec2Float{X: 0.5, Z: 0.5}))
	assert.Equal(t, Vec2Float{X: 3, Z: -2}, FromVec2(Vec2{X: 3, Z: -2}))
}
