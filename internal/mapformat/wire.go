package mapformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/vec"
)

// FormatVersion записывается в метаданные при сохранении
const FormatVersion = "1.0"

// Map представляет карту в формате обмена с сервером
type Map struct {
	Metadata Metadata          `json:"metadata"`
	Bricks   []SerializedBrick `json:"bricks"`
}

// Metadata описывает поле и автора карты
type Metadata struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Depth     int    `json:"depth"`
	Name      string `json:"name"`
	Author    string `json:"author,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// NewMetadata возвращает метаданные стандартного поля с текущим временем
func NewMetadata(name, author string) Metadata {
	b := grid.DefaultBounds()
	return Metadata{
		Width:     b.Width,
		Height:    b.Height,
		Depth:     b.Depth,
		Name:      name,
		Author:    author,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   FormatVersion,
	}
}

// Bounds возвращает границы поля; нулевые размеры заменяются стандартными
func (m Metadata) Bounds() grid.Bounds {
	b := grid.DefaultBounds()
	if m.Width > 0 {
		b.Width = m.Width
	}
	if m.Height > 0 {
		b.Height = m.Height
	}
	if m.Depth > 0 {
		b.Depth = m.Depth
	}
	return b
}

// SerializedBrick представляет кирпич в формате обмена. Встречаются три варианта схемы:
//   - {color, name, points:[{x,y,z}...]}        текущий
//   - {color, name, xs:[...], zs:[...], y}       старый
//   - {color, name, width, depth, anchor:{x,y,z}} прямой
type SerializedBrick struct {
	Color  WireColor  `json:"color"`
	Name   string     `json:"name,omitempty"`
	Points []vec.Vec3 `json:"points,omitempty"`

	Xs []int `json:"xs,omitempty"`
	Zs []int `json:"zs,omitempty"`
	Y  *int  `json:"y,omitempty"`

	Width  int       `json:"width,omitempty"`
	Depth  int       `json:"depth,omitempty"`
	Anchor *vec.Vec3 `json:"anchor,omitempty"`
}

// Schema обозначает обнаруженный вариант схемы кирпича
type Schema int

const (
	SchemaUnknown Schema = iota
	SchemaPoints
	SchemaAxes
	SchemaAnchor
)

func (s Schema) String() string {
	switch s {
	case SchemaPoints:
		return "points"
	case SchemaAxes:
		return "xs/zs"
	case SchemaAnchor:
		return "anchor"
	default:
		return "unknown"
	}
}

// Schema определяет, какой вариант схемы использован
func (sb SerializedBrick) Schema() Schema {
	switch {
	case len(sb.Points) > 0:
		return SchemaPoints
	case len(sb.Xs) > 0 && len(sb.Zs) > 0 && sb.Y != nil:
		return SchemaAxes
	case sb.Width > 0 && sb.Depth > 0 && sb.Anchor != nil:
		return SchemaAnchor
	default:
		return SchemaUnknown
	}
}

// Cells возвращает занятые клетки в том виде, в каком они записаны.
// ok=false, если геометрии нет ни в одном варианте схемы.
func (sb SerializedBrick) Cells() ([]vec.Vec3, bool) {
	switch sb.Schema() {
	case SchemaPoints:
		out := make([]vec.Vec3, len(sb.Points))
		copy(out, sb.Points)
		return out, true
	case SchemaAxes:
		out := make([]vec.Vec3, 0, len(sb.Xs)*len(sb.Zs))
		for _, x := range sb.Xs {
			for _, z := range sb.Zs {
				out = append(out, vec.Vec3{X: x, Y: *sb.Y, Z: z})
			}
		}
		return out, true
	case SchemaAnchor:
		fp := grid.Footprint{Width: sb.Width, Height: 1, Depth: sb.Depth}
		return grid.Cells(*sb.Anchor, fp, grid.Rot0), true
	default:
		return nil, false
	}
}

// WireColor хранит цвет в файле. Читается из "#rrggbb", имени палитры
// или целого числа (старые сохранения писали число), пишется всегда строкой.
type WireColor string

// UnmarshalJSON принимает строку или число. Любое другое значение
// сохраняется как есть и при загрузке разрешается в серый.
func (c *WireColor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = WireColor(s)
		return nil
	}

	// Не валим загрузку из-за одного цвета: пусть разрешится в серый
	var n float64
	if err := json.Unmarshal(data, &n); err != nil || n < 0 || n > 0xFFFFFF {
		*c = WireColor(string(data))
		return nil
	}
	*c = WireColor(fmt.Sprintf("#%06x", uint32(n)))
	return nil
}
