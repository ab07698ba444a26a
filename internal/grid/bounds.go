package grid

import "github.com/annel0/caaluza/internal/vec"

// Размеры поля по умолчанию
const (
	DefaultSize   = 6  // пластина 6x6
	DefaultHeight = 10 // максимальная высота постройки
)

// Bounds задаёт допустимый объём поля. Сам тип клетки не ограничен,
// границы являются политикой валидатора и генератора.
type Bounds struct {
	Width  int
	Height int
	Depth  int
}

// DefaultBounds возвращает стандартное поле 6x10x6
func DefaultBounds() Bounds {
	return Bounds{Width: DefaultSize, Height: DefaultHeight, Depth: DefaultSize}
}

// Contains проверяет, лежит ли клетка внутри поля
func (b Bounds) Contains(c vec.Vec3) bool {
	return c.X >= 0 && c.X < b.Width &&
		c.Y >= 0 && c.Y < b.Height &&
		c.Z >= 0 && c.Z < b.Depth
}

// BaseplateAnchor возвращает якорь пластины: её шипы лежат на уровне y = -1,
// первый ряд кирпичей стоит на y = 0.
func BaseplateAnchor() vec.Vec3 {
	return vec.Vec3{X: 0, Y: -1, Z: 0}
}

// BaseplateFootprint возвращает габариты квадратной пластины
func BaseplateFootprint(size int) Footprint {
	return Footprint{Width: size, Height: 1, Depth: size}
}
