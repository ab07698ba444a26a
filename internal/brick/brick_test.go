package brick

import (
	"testing"

	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrick() *Brick {
	return New(vec.Vec3{X: 1, Y: 0, Z: 1}, 0xC91A09, grid.Footprint{Width: 1, Height: 1, Depth: 2}, "1x2 Red")
}

func TestNew_InHand(t *testing.T) {
	b := newTestBrick()
	assert.Equal(t, InHand, b.State())
	assert.False(t, b.IsBaseplate())
	assert.False(t, b.IsPlaced())
	assert.NotEqual(t, newTestBrick().ID(), b.ID(), "ID должны быть уникальны")
}

func TestNewBaseplate(t *testing.T) {
	bp := NewBaseplate(6)
	assert.True(t, bp.IsBaseplate())
	assert.Equal(t, Dropped, bp.State())
	assert.Equal(t, Gray, bp.Color())
	assert.Len(t, bp.CoveredCells(), 36)
	assert.Equal(t, -1, bp.Anchor().Y)
}

func TestSetPosition_KeepsOtherFields(t *testing.T) {
	b := newTestBrick()
	b.Step(3)
	b.Rotate()
	b.SetPosition(4, 5)

	assert.Equal(t, vec.Vec3{X: 4, Y: 3, Z: 5}, b.Anchor())
	assert.Equal(t, grid.Footprint{Width: 1, Height: 1, Depth: 2}, b.Footprint())
	assert.Equal(t, Color(0xC91A09), b.Color())
	assert.Equal(t, 90, b.Rotation().Degrees())
}

func TestRotate_SwapsEffectiveFootprint(t *testing.T) {
	b := newTestBrick()
	anchor := b.Anchor()
	b.Rotate()
	assert.Equal(t, anchor, b.Anchor(), "поворот не меняет якорь")
	assert.Equal(t, grid.Footprint{Width: 2, Height: 1, Depth: 1}, b.EffectiveFootprint())

	b.Rotate()
	b.Rotate()
	b.Rotate()
	assert.Equal(t, grid.Rot0, b.Rotation())
}

func TestValidityTransitions(t *testing.T) {
	b := newTestBrick()
	assert.False(t, b.MarkInvalid(), "кирпич в руке нельзя пометить")
	assert.Equal(t, InHand, b.State())

	b.MarkDropped()
	assert.True(t, b.MarkInvalid())
	assert.Equal(t, Invalid, b.State())
	assert.True(t, b.IsPlaced())
	assert.False(t, b.MarkInvalid(), "повторная пометка ничего не меняет")

	assert.True(t, b.ResetValidity())
	assert.Equal(t, Dropped, b.State())
	assert.False(t, b.ResetValidity())

	bp := NewBaseplate(6)
	assert.False(t, bp.MarkInvalid())
	assert.Equal(t, Dropped, bp.State())
}

func TestCoveredCells_Example(t *testing.T) {
	b := New(vec.Vec3{X: 2, Y: 0, Z: 2}, 0xC91A09, grid.Footprint{Width: 1, Height: 1, Depth: 2}, "1x2 Red")
	assert.Equal(t, []vec.Vec3{{X: 2, Y: 0, Z: 2}, {X: 2, Y: 0, Z: 3}}, b.CoveredCells())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#c91a09", Color(0xC91A09).String())
	assert.Equal(t, "#0000ff", Color(0xFF).String())

	c, err := ParseHex("#0055BF")
	require.NoError(t, err)
	assert.Equal(t, Color(0x0055BF), c)

	_, err = ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("zzzzzz")
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	m := NewManager(6)
	require.NotNil(t, m.Baseplate())

	a := newTestBrick()
	b := newTestBrick()
	assert.True(t, m.Add(a))
	assert.True(t, m.Add(b))
	assert.False(t, m.Add(a), "кирпич не может быть в коллекции дважды")
	assert.False(t, m.Add(m.Baseplate()))
	assert.Equal(t, 2, m.Len())

	assert.Empty(t, m.Placed(), "кирпичи в руке не входят в карту")
	b.MarkDropped()
	a.MarkDropped()
	placed := m.Placed()
	require.Len(t, placed, 2)
	assert.Equal(t, a.ID(), placed[0].ID(), "порядок вставки сохраняется")

	assert.False(t, m.Remove(m.Baseplate().ID()))
	assert.True(t, m.Remove(a.ID()))
	assert.False(t, m.Remove(a.ID()), "повторное удаление ничего не делает")
	_, ok := m.Get(a.ID())
	assert.False(t, ok)

	found, ok := m.FindLabel("1x2 Red")
	assert.True(t, ok)
	assert.Equal(t, b.ID(), found.ID())

	m.Clear()
	assert.Equal(t, 0, m.Len())
	_, ok = m.Get(m.Baseplate().ID())
	assert.True(t, ok, "пластина переживает очистку")
}
