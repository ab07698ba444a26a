package grid

import (
	"fmt"

	"github.com/annel0/caaluza/internal/vec"
)

// Footprint задаёт габариты кирпича в единицах сетки (шипах).
type Footprint struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`
}

// Valid проверяет, что все размеры не меньше 1
func (f Footprint) Valid() bool {
	return f.Width >= 1 && f.Height >= 1 && f.Depth >= 1
}

// Area возвращает число клеток, занимаемых в плоскости
func (f Footprint) Area() int {
	return f.Width * f.Depth
}

func (f Footprint) String() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Depth)
}

// Rotation задаёт поворот вокруг вертикальной оси с шагом 90°.
type Rotation int

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Degrees возвращает угол поворота в градусах
func (r Rotation) Degrees() int {
	return int(r.normalized()) * 90
}

// Next возвращает следующий поворот (+90°, по кругу)
func (r Rotation) Next() Rotation {
	return (r.normalized() + 1) % 4
}

// SwapsAxes сообщает, меняются ли ширина и глубина местами
func (r Rotation) SwapsAxes() bool {
	n := r.normalized()
	return n == Rot90 || n == Rot270
}

func (r Rotation) normalized() Rotation {
	return ((r % 4) + 4) % 4
}

// Effective возвращает габариты с учётом поворота
func (r Rotation) Effective(f Footprint) Footprint {
	if r.SwapsAxes() {
		return Footprint{Width: f.Depth, Height: f.Height, Depth: f.Width}
	}
	return f
}

// Cells перечисляет все клетки под кирпичом: anchor + (i, 0, j)
// для i < ширины и j < глубины после поворота. Порядок: сначала по X, затем по Z.
// Якорь при повороте не меняется.
func Cells(anchor vec.Vec3, f Footprint, r Rotation) []vec.Vec3 {
	eff := r.Effective(f)
	if eff.Width < 1 || eff.Depth < 1 {
		return nil
	}

	cells := make([]vec.Vec3, 0, eff.Area())
	for i := 0; i < eff.Width; i++ {
		for j := 0; j < eff.Depth; j++ {
			cells = append(cells, anchor.Add(vec.Vec3{X: i, Z: j}))
		}
	}
	return cells
}
