package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума подобраны под поле 6x6: крупные плавные холмы
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = int32(3)
	noiseScale   = 0.35
)

// Noise задаёт детерминированное поле шума Перлина для заданного сида
type Noise struct {
	p *perlin.Perlin
}

// NewNoise создаёт поле шума с указанным сидом
func NewNoise(seed int64) *Noise {
	return &Noise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// At возвращает значение шума для клетки сетки (от 0 до 1)
func (n *Noise) At(x, z float64) float64 {
	// Получаем значение шума (примерно от -1 до 1)
	v := n.p.Noise2D(x*noiseScale, z*noiseScale)

	// Преобразуем в диапазон от 0 до 1
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
