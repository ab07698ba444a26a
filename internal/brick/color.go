package brick

import (
	"fmt"
	"strconv"
	"strings"
)

// Color хранит 24-битный RGB цвет. Внутри всегда целое число,
// в строку "#rrggbb" превращается только на границе формата.
type Color uint32

// Gray используется для пластины и как цвет по умолчанию при загрузке
const Gray Color = 0x808080

// String возвращает цвет в виде "#rrggbb"
func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// ParseHex разбирает "#rrggbb" (решётка необязательна)
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}
