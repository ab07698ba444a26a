package mapformat

import (
	"strings"

	"github.com/annel0/caaluza/internal/brick"
)

// PaletteColor описывает цвет из набора кнопок выбора
type PaletteColor struct {
	Name string
	Hex  brick.Color
}

// Palette перечисляет известные цвета кирпичей
var Palette = []PaletteColor{
	{Name: "Red", Hex: 0xC91A09},
	{Name: "Blue", Hex: 0x0055BF},
	{Name: "Green", Hex: 0x237841},
	{Name: "Yellow", Hex: 0xF2CD37},
	{Name: "White", Hex: 0xFFFFFF},
	{Name: "Black", Hex: 0x05131D},
	{Name: "Orange", Hex: 0xFE8A18},
	{Name: "Gray", Hex: brick.Gray},
}

// ColorByName ищет цвет палитры по имени без учёта регистра
func ColorByName(name string) (PaletteColor, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Palette {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return PaletteColor{}, false
}

// ColorByHex ищет цвет палитры по значению
func ColorByHex(hex brick.Color) (PaletteColor, bool) {
	for _, c := range Palette {
		if c.Hex == hex {
			return c, true
		}
	}
	return PaletteColor{}, false
}

// ResolveColor сопоставляет значение из файла с палитрой: сначала по hex,
// затем по имени. Если ничего не подошло, серый и ok=false.
func ResolveColor(raw string) (brick.Color, bool) {
	if hex, err := brick.ParseHex(raw); err == nil {
		if c, ok := ColorByHex(hex); ok {
			return c.Hex, true
		}
	}
	if c, ok := ColorByName(raw); ok {
		return c.Hex, true
	}
	return brick.Gray, false
}

// ColorName возвращает имя цвета палитры или его hex-запись
func ColorName(c brick.Color) string {
	if pc, ok := ColorByHex(c); ok {
		return pc.Name
	}
	return c.String()
}
