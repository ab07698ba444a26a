package mapformat

import (
	"fmt"
	"strings"

	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
)

// Size описывает типоразмер кирпича из набора кнопок ("1x2")
type Size struct {
	Name  string
	Width int
	Depth int
}

// Sizes перечисляет доступные типоразмеры: ширина 1..2, глубина от ширины до 4
var Sizes = []Size{
	{Name: "1x1", Width: 1, Depth: 1},
	{Name: "1x2", Width: 1, Depth: 2},
	{Name: "1x3", Width: 1, Depth: 3},
	{Name: "1x4", Width: 1, Depth: 4},
	{Name: "2x2", Width: 2, Depth: 2},
	{Name: "2x3", Width: 2, Depth: 3},
	{Name: "2x4", Width: 2, Depth: 4},
}

// SizeByName ищет типоразмер по имени
func SizeByName(name string) (Size, bool) {
	for _, s := range Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// Footprint возвращает габариты кирпича этого типоразмера
func (s Size) Footprint() grid.Footprint {
	return grid.Footprint{Width: s.Width, Height: 1, Depth: s.Depth}
}

// Selector содержит разобранную подпись кнопки выбора, например "1x2 Red"
type Selector struct {
	Label     string
	Footprint grid.Footprint
	Color     brick.Color
}

// ParseSelector разбирает подпись "<размер> <цвет>"
func ParseSelector(label string) (Selector, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return Selector{}, fmt.Errorf("selector %q: want \"<size> <color>\"", label)
	}

	size, ok := SizeByName(parts[0])
	if !ok {
		return Selector{}, fmt.Errorf("selector %q: unknown size %q", label, parts[0])
	}
	color, ok := ColorByName(parts[1])
	if !ok {
		return Selector{}, fmt.Errorf("selector %q: unknown color %q", label, parts[1])
	}

	return Selector{
		Label:     label,
		Footprint: size.Footprint(),
		Color:     color.Hex,
	}, nil
}

// SelectorLabel собирает подпись кнопки из габаритов и цвета
func SelectorLabel(fp grid.Footprint, c brick.Color) string {
	return fmt.Sprintf("%dx%d %s", fp.Width, fp.Depth, ColorName(c))
}

// AllSelectors перечисляет все кнопки: каждый типоразмер в каждом цвете палитры,
// кроме серого (это цвет пластины).
func AllSelectors() []string {
	labels := make([]string, 0, len(Sizes)*len(Palette))
	for _, c := range Palette {
		if c.Hex == brick.Gray {
			continue
		}
		for _, s := range Sizes {
			labels = append(labels, s.Name+" "+c.Name)
		}
	}
	return labels
}
