package editor

import (
	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/vec"
)

// BrickView описывает кирпич для отрисовки
type BrickView struct {
	ID        brick.ID
	Label     string
	Color     brick.Color
	Anchor    vec.Vec3
	Footprint grid.Footprint
	Rotation  grid.Rotation
	State     brick.State
	Baseplate bool
	Cells     []vec.Vec3
}

func viewOf(b *brick.Brick) BrickView {
	return BrickView{
		ID:        b.ID(),
		Label:     b.Label(),
		Color:     b.Color(),
		Anchor:    b.Anchor(),
		Footprint: b.Footprint(),
		Rotation:  b.Rotation(),
		State:     b.State(),
		Baseplate: b.IsBaseplate(),
		Cells:     b.CoveredCells(),
	}
}

// Bricks возвращает снимки всех кирпичей, включая пластину
func (s *Session) Bricks() []BrickView {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.bricks.All()
	out := make([]BrickView, 0, len(all)+1)
	if bp := s.bricks.Baseplate(); bp != nil {
		out = append(out, viewOf(bp))
	}
	for _, b := range all {
		out = append(out, viewOf(b))
	}
	return out
}

// Brick возвращает снимок одного кирпича
func (s *Session) Brick(id brick.ID) (BrickView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bricks.Get(id)
	if !ok {
		return BrickView{}, false
	}
	return viewOf(b), true
}

// SelectorState описывает кнопку выбора кирпича и её доступность
type SelectorState struct {
	Label   string
	Enabled bool
}

// Selectors перечисляет кнопки выбора. Кнопка неактивна, пока кирпич
// с её подписью лежит на поле или находится в руке.
func (s *Session) Selectors() []SelectorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels := mapformat.AllSelectors()
	out := make([]SelectorState, 0, len(labels))
	for _, l := range labels {
		_, live := s.bricks.FindLabel(l)
		out = append(out, SelectorState{Label: l, Enabled: !live && s.mode == ModeEdit})
	}
	return out
}

// ColorGroup группирует отпущенные кирпичи одного цвета
type ColorGroup struct {
	Color  brick.Color
	Name   string
	Labels []string
}

// PlacedByColor группирует отпущенные кирпичи по цвету в порядке первого появления
func (s *Session) PlacedByColor() []ColorGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []ColorGroup
	index := make(map[brick.Color]int)
	for _, b := range s.bricks.Placed() {
		i, ok := index[b.Color()]
		if !ok {
			i = len(groups)
			index[b.Color()] = i
			groups = append(groups, ColorGroup{Color: b.Color(), Name: mapformat.ColorName(b.Color())})
		}
		groups[i].Labels = append(groups[i].Labels, b.Label())
	}
	return groups
}
