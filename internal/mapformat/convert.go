package mapformat

import (
	"fmt"

	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/vec"
)

// ToWire переводит коллекцию кирпичей в формат обмена. Пластина и кирпичи
// в руке пропускаются; порядок совпадает с порядком в коллекции.
func ToWire(bricks []*brick.Brick, meta Metadata) Map {
	out := Map{
		Metadata: meta,
		Bricks:   make([]SerializedBrick, 0, len(bricks)),
	}

	for _, b := range bricks {
		if b == nil || b.IsBaseplate() || !b.IsPlaced() {
			continue
		}
		out.Bricks = append(out.Bricks, SerializedBrick{
			Color:  WireColor(b.Color().String()),
			Name:   b.Label(),
			Points: b.CoveredCells(),
		})
	}
	return out
}

// Loaded описывает кирпич, восстановленный из файла
type Loaded struct {
	Index     int // позиция в исходном массиве bricks
	Anchor    vec.Vec3
	Footprint grid.Footprint
	Color     brick.Color
	Label     string
}

// Problem описывает поле, которое пришлось восстановить или пропустить
type Problem struct {
	Index  int
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("brick %d: %s", p.Index, p.Reason)
}

// FromWire восстанавливает кирпичи из формата обмена. Якорь и габариты
// считаются по ограничивающему прямоугольнику клеток; y берётся из первой клетки.
// Неразрешимый цвет заменяется серым, кирпич без геометрии пропускается,
// загрузка целиком не прерывается никогда.
func FromWire(m Map) ([]Loaded, []Problem) {
	loaded := make([]Loaded, 0, len(m.Bricks))
	var problems []Problem

	for i, sb := range m.Bricks {
		cells, ok := sb.Cells()
		if !ok || len(cells) == 0 {
			problems = append(problems, Problem{Index: i, Reason: "no usable geometry, skipped"})
			continue
		}

		minX, maxX := cells[0].X, cells[0].X
		minZ, maxZ := cells[0].Z, cells[0].Z
		for _, c := range cells[1:] {
			minX = min(minX, c.X)
			maxX = max(maxX, c.X)
			minZ = min(minZ, c.Z)
			maxZ = max(maxZ, c.Z)
		}

		color, resolved := ResolveColor(string(sb.Color))
		if !resolved {
			problems = append(problems, Problem{Index: i, Reason: fmt.Sprintf("unknown color %q, using gray", sb.Color)})
		}

		fp := grid.Footprint{Width: maxX - minX + 1, Height: 1, Depth: maxZ - minZ + 1}
		label := sb.Name
		if label == "" {
			label = SelectorLabel(fp, color)
		}

		loaded = append(loaded, Loaded{
			Index:     i,
			Anchor:    vec.Vec3{X: minX, Y: cells[0].Y, Z: minZ},
			Footprint: fp,
			Color:     color,
			Label:     label,
		})
	}

	return loaded, problems
}

// Build создаёт отпущенный кирпич из восстановленных данных
func (l Loaded) Build() *brick.Brick {
	return brick.NewDropped(l.Anchor, l.Color, l.Footprint, l.Label)
}
