package grid

import (
	"testing"

	"github.com/annel0/caaluza/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestSnap(t *testing.T) {
	tests := []struct {
		name   string
		point  vec.Vec2Float
		offset vec.Vec2Float
		want   vec.Vec2
	}{
		{"без смещения", vec.Vec2Float{X: 2.4, Z: 1.6}, vec.Vec2Float{}, vec.Vec2{X: 2, Z: 2}},
		{"со смещением", vec.Vec2Float{X: 3.9, Z: 3.1}, vec.Vec2Float{X: 0.5, Z: 1.2}, vec.Vec2{X: 3, Z: 2}},
		{"половина вверх", vec.Vec2Float{X: 0.5, Z: -0.5}, vec.Vec2Float{}, vec.Vec2{X: 1, Z: 0}},
		{"отрицательные", vec.Vec2Float{X: -2.5, Z: -2.6}, vec.Vec2Float{}, vec.Vec2{X: -2, Z: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snap(tt.point, tt.offset))
		})
	}
}

func TestSnap_Idempotent(t *testing.T) {
	points := []vec.Vec2Float{{X: 2.4, Z: 1.6}, {X: -0.7, Z: 5.5}, {X: 10.49, Z: -3.51}}
	for _, p := range points {
		first := Snap(p, vec.Vec2Float{})
		second := Snap(vec.FromVec2(first), vec.Vec2Float{})
		assert.Equal(t, first, second, "повторная привязка не должна сдвигать клетку")
	}
}

func TestCells_CountAndDistinct(t *testing.T) {
	anchor := vec.Vec3{X: 1, Y: 2, Z: 3}
	for w := 1; w <= 4; w++ {
		for d := 1; d <= 4; d++ {
			fp := Footprint{Width: w, Height: 1, Depth: d}
			for r := Rot0; r <= Rot270; r++ {
				cells := Cells(anchor, fp, r)
				assert.Len(t, cells, w*d)

				seen := make(map[vec.Vec3]bool, len(cells))
				for _, c := range cells {
					assert.False(t, seen[c], "клетка %v повторяется", c)
					seen[c] = true
					assert.Equal(t, anchor.Y, c.Y)
				}
			}
		}
	}
}

func TestCells_RotationSwapsAxes(t *testing.T) {
	fp := Footprint{Width: 2, Height: 1, Depth: 3}
	anchor := vec.Vec3{}

	assert.Equal(t, Cells(anchor, fp, Rot0), Cells(anchor, fp, Rot180))
	assert.Equal(t, Cells(anchor, fp, Rot90), Cells(anchor, fp, Rot270))

	rotated := Cells(anchor, fp, Rot90)
	assert.Contains(t, rotated, vec.Vec3{X: 2, Y: 0, Z: 1})
	assert.NotContains(t, rotated, vec.Vec3{X: 1, Y: 0, Z: 2})
}

func TestCells_Order(t *testing.T) {
	cells := Cells(vec.Vec3{X: 2, Y: 0, Z: 2}, Footprint{Width: 2, Height: 1, Depth: 2}, Rot0)
	assert.Equal(t, []vec.Vec3{
		{X: 2, Y: 0, Z: 2}, {X: 2, Y: 0, Z: 3},
		{X: 3, Y: 0, Z: 2}, {X: 3, Y: 0, Z: 3},
	}, cells)
}

func TestRotation_Next(t *testing.T) {
	r := Rot0
	degrees := []int{}
	for i := 0; i < 5; i++ {
		r = r.Next()
		degrees = append(degrees, r.Degrees())
	}
	assert.Equal(t, []int{90, 180, 270, 0, 90}, degrees)
}

func TestBounds_Contains(t *testing.T) {
	b := DefaultBounds()
	assert.True(t, b.Contains(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.True(t, b.Contains(vec.Vec3{X: 5, Y: 9, Z: 5}))
	assert.False(t, b.Contains(vec.Vec3{X: 6, Y: 0, Z: 0}))
	assert.False(t, b.Contains(vec.Vec3{X: 0, Y: -1, Z: 0}))
	assert.False(t, b.Contains(vec.Vec3{X: 0, Y: 10, Z: 0}))
}

func TestFootprint_Valid(t *testing.T) {
	assert.True(t, Footprint{Width: 1, Height: 1, Depth: 1}.Valid())
	assert.False(t, Footprint{Width: 0, Height: 1, Depth: 1}.Valid())
	assert.False(t, Footprint{Width: 2, Height: 1, Depth: -1}.Valid())
}
