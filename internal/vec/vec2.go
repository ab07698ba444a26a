package vec

// Vec2 представляет горизонтальную позицию на сетке (X, Z)
type Vec2 struct {
	X, Z int
}
