// Package generator строит случайные карты: кирпичи ставятся на свободные
// выступы пластины или нижних кирпичей без пересечений.
package generator

import (
	"math/rand"
	"time"

	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/util"
	"github.com/annel0/caaluza/internal/vec"
)

// Границы параметров совпадают с ползунками редактора
const (
	MinPieces        = 1
	MaxPieces        = 28
	DefaultPieces    = 8
	MinHeight        = 1
	MaxHeight        = 10
	DefaultMaxHeight = 8

	// GeneratedMapName используется, если вызывающий не задал имя
	GeneratedMapName = "Generated Map"
)

// Colors перечисляет цвета случайных карт
var Colors = []string{"Yellow", "Red", "Green", "Blue"}

// Options задаёт параметры генерации
type Options struct {
	Pieces    int
	MaxHeight int
	Seed      int64 // 0: взять текущее время
	Name      string
}

// Clamp приводит параметры к допустимым диапазонам
func (o Options) Clamp() Options {
	o.Pieces = clamp(o.Pieces, MinPieces, MaxPieces, DefaultPieces)
	o.MaxHeight = clamp(o.MaxHeight, MinHeight, MaxHeight, DefaultMaxHeight)
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Name == "" {
		o.Name = GeneratedMapName
	}
	return o
}

func clamp(v, lo, hi, def int) int {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

type piece struct {
	footprint grid.Footprint
	color     brick.Color
	colorName string
}

// catalogue возвращает набор деталей генератора: 4 цвета x 7 размеров
func catalogue() []piece {
	out := make([]piece, 0, len(Colors)*7)
	for _, name := range Colors {
		pc, _ := mapformat.ColorByName(name)
		for i := 1; i <= 2; i++ {
			for j := i; j <= 4; j++ {
				out = append(out, piece{
					footprint: grid.Footprint{Width: i, Height: 1, Depth: j},
					color:     pc.Hex,
					colorName: pc.Name,
				})
			}
		}
	}
	return out
}

type spot struct {
	anchor   vec.Vec3
	rotation grid.Rotation
	weight   float64
}

// Generator собирает карты на поле заданного размера
type Generator struct {
	bounds grid.Bounds
}

// New создаёт генератор для стандартного поля
func New() *Generator {
	return NewWithBounds(grid.DefaultBounds())
}

// NewWithBounds создаёт генератор для поля заданного размера
func NewWithBounds(b grid.Bounds) *Generator {
	return &Generator{bounds: b}
}

// Generate строит карту. Детали, которым не нашлось места, пропускаются,
// поэтому кирпичей может оказаться меньше запрошенного.
func (g *Generator) Generate(opts Options) mapformat.Map {
	opts = opts.Clamp()
	rng := rand.New(rand.NewSource(opts.Seed))
	noise := util.NewNoise(opts.Seed)

	pieces := catalogue()
	order := rng.Perm(len(pieces))[:opts.Pieces]

	height := opts.MaxHeight
	if height > g.bounds.Height {
		height = g.bounds.Height
	}

	occupied := make(map[vec.Vec3]bool)
	placed := make([]*brick.Brick, 0, len(order))

	for _, idx := range order {
		p := pieces[idx]
		spots := g.spots(p.footprint, height, occupied, noise)
		if len(spots) == 0 {
			continue
		}

		s := pick(rng, spots)
		b := brick.NewDropped(s.anchor, p.color, p.footprint, mapformat.SelectorLabel(p.footprint, p.color))
		if s.rotation != grid.Rot0 {
			b.Rotate()
		}
		for _, c := range b.CoveredCells() {
			occupied[c] = true
		}
		placed = append(placed, b)
	}

	meta := mapformat.NewMetadata(opts.Name, "")
	meta.Width, meta.Height, meta.Depth = g.bounds.Width, g.bounds.Height, g.bounds.Depth
	return mapformat.ToWire(placed, meta)
}

// spots перечисляет все допустимые позиции детали в детерминированном порядке.
// Позиция допустима, если все клетки свободны и лежат в поле ниже height,
// а хотя бы одна клетка стоит на выступе (пластина или занятая клетка ниже).
func (g *Generator) spots(fp grid.Footprint, height int, occupied map[vec.Vec3]bool, noise *util.Noise) []spot {
	rotations := []grid.Rotation{grid.Rot0}
	if fp.Width != fp.Depth {
		rotations = append(rotations, grid.Rot90)
	}

	var out []spot
	for _, rot := range rotations {
		eff := rot.Effective(fp)
		for y := 0; y < height; y++ {
			for x := 0; x+eff.Width <= g.bounds.Width; x++ {
				for z := 0; z+eff.Depth <= g.bounds.Depth; z++ {
					anchor := vec.Vec3{X: x, Y: y, Z: z}
					cells := grid.Cells(anchor, fp, rot)
					if !fits(cells, occupied) {
						continue
					}
					cx := float64(x) + float64(eff.Width)/2
					cz := float64(z) + float64(eff.Depth)/2
					// Шум задаёт «холмы»: на высоких местах поля детали ставятся охотнее
					w := 0.05 + noise.At(cx, cz)*float64(1+y)
					out = append(out, spot{anchor: anchor, rotation: rot, weight: w})
				}
			}
		}
	}
	return out
}

func fits(cells []vec.Vec3, occupied map[vec.Vec3]bool) bool {
	supported := false
	for _, c := range cells {
		if occupied[c] {
			return false
		}
		if c.Y == 0 || occupied[c.Below()] {
			supported = true
		}
	}
	return supported
}

func pick(rng *rand.Rand, spots []spot) spot {
	total := 0.0
	for _, s := range spots {
		total += s.weight
	}
	r := rng.Float64() * total
	for _, s := range spots {
		r -= s.weight
		if r < 0 {
			return s
		}
	}
	return spots[len(spots)-1]
}
