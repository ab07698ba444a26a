package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoise_DeterministicAndNormalized(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)

	for x := 0; x < 6; x++ {
		for z := 0; z < 6; z++ {
			va := a.At(float64(x), float64(z))
			assert.Equal(t, va, b.At(float64(x), float64(z)), "один сид даёт одинаковый шум")
			assert.GreaterOrEqual(t, va, 0.0)
			assert.LessOrEqual(t, va, 1.0)
		}
	}
}
