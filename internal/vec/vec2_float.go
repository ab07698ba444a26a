package vec

// Vec2Float представляет непрерывную точку на плоскости пластины,
// например пересечение луча указателя с землёй.
type Vec2Float struct {
	X, Z float64
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Z: float64(v.Z)}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Z: v.Z - other.Z}
}
