package grid

import (
	"math"

	"github.com/annel0/caaluza/internal/vec"
)

// Round округляет к ближайшему целому, половины вверх (к +∞).
// Так же округляет браузерный клиент, поэтому -2.5 даёт -2, а не -3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Snap привязывает точку пересечения луча с землёй к клетке сетки
// с учётом смещения захвата: (round(x-offX), round(z-offZ)).
// NaN на входе считается ошибкой вызывающей стороны.
func Snap(point, offset vec.Vec2Float) vec.Vec2 {
	p := point.Sub(offset)
	return vec.Vec2{X: Round(p.X), Z: Round(p.Z)}
}
