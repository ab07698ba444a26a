package vec

import "fmt"

// Vec3 представляет клетку сетки с целочисленными координатами.
// Y задаёт вертикальную ось, X и Z лежат в плоскости пластины.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Horizontal возвращает проекцию клетки на плоскость пластины
func (v Vec3) Horizontal() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

// WithHorizontal возвращает клетку с заменёнными X и Z, Y не меняется
func (v Vec3) WithHorizontal(h Vec2) Vec3 {
	return Vec3{X: h.X, Y: v.Y, Z: h.Z}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Below возвращает клетку непосредственно под текущей
func (v Vec3) Below() Vec3 {
	return Vec3{X: v.X, Y: v.Y - 1, Z: v.Z}
}

// Above возвращает клетку непосредственно над текущей
func (v Vec3) Above() Vec3 {
	return Vec3{X: v.X, Y: v.Y + 1, Z: v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
