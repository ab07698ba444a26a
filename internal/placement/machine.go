package placement

import (
	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/vec"
)

// VerticalStep задаёт шаг вертикального сдвига в клетках
const VerticalStep = 1

// State представляет состояние автомата перетаскивания
type State int

const (
	// Idle: в руке ничего нет
	Idle State = iota
	// Dragging: ровно один кирпич следует за указателем
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "Dragging"
	}
	return "Idle"
}

// Trigger вызывается после каждого отпускания и удаления кирпича,
// чтобы запустить проход валидации.
type Trigger func()

// Machine управляет захватом, перетаскиванием и отпусканием кирпичей.
// Единственный «кирпич в руке» хранится здесь и только здесь.
// Все отказы являются тихими no-op с булевым результатом, ошибок автомат не возвращает.
type Machine struct {
	bricks  *brick.Manager
	trigger Trigger

	held   *brick.Brick
	offset vec.Vec2Float
}

// NewMachine создаёт автомат поверх коллекции кирпичей.
// trigger может быть nil.
func NewMachine(bricks *brick.Manager, trigger Trigger) *Machine {
	return &Machine{
		bricks:  bricks,
		trigger: trigger,
	}
}

// State возвращает текущее состояние
func (m *Machine) State() State {
	if m.held != nil {
		return Dragging
	}
	return Idle
}

// Held возвращает ID кирпича в руке
func (m *Machine) Held() (brick.ID, bool) {
	if m.held == nil {
		return 0, false
	}
	return m.held.ID(), true
}

// Offset возвращает смещение захвата, запомненное в BeginDrag
func (m *Machine) Offset() vec.Vec2Float {
	return m.offset
}

// BeginDrag берёт кирпич в руку. offset задаёт смещение точки захвата
// относительно якоря, чтобы кирпич не прыгал к курсору.
// Отклоняется для пластины, для кирпича вне коллекции и если рука занята.
func (m *Machine) BeginDrag(b *brick.Brick, offset vec.Vec2Float) bool {
	if m.held != nil || b == nil || b.IsBaseplate() {
		return false
	}
	if _, ok := m.bricks.Get(b.ID()); !ok {
		return false
	}

	m.held = b
	m.offset = offset
	return true
}

// UpdatePosition привязывает кирпич в руке к клетке под указателем.
// Другие кирпичи не трогает. В Idle ничего не делает.
func (m *Machine) UpdatePosition(x, z float64) bool {
	if m.held == nil {
		return false
	}

	cell := grid.Snap(vec.Vec2Float{X: x, Z: z}, m.offset)
	m.held.SetPosition(cell.X, cell.Z)
	return true
}

// Rotate поворачивает кирпич в руке на 90°, якорь остаётся на месте
func (m *Machine) Rotate() bool {
	if m.held == nil {
		return false
	}
	m.held.Rotate()
	return true
}

// AdjustVertical сдвигает кирпич в руке на одну клетку вверх (dir > 0)
// или вниз (dir < 0). Пол и потолок здесь не ограничиваются.
func (m *Machine) AdjustVertical(dir int) bool {
	if m.held == nil || dir == 0 {
		return false
	}
	if dir > 0 {
		m.held.Step(VerticalStep)
	} else {
		m.held.Step(-VerticalStep)
	}
	return true
}

// EndDrag отпускает кирпич: он становится Dropped, рука освобождается,
// затем запускается проход валидации.
func (m *Machine) EndDrag() bool {
	if m.held == nil {
		return false
	}

	m.held.MarkDropped()
	m.held = nil
	m.offset = vec.Vec2Float{}
	m.fire()
	return true
}

// Remove удаляет кирпич из коллекции и запускает валидацию.
// Пластину удалить нельзя; повторное удаление ничего не делает.
// Если удаляется кирпич в руке, рука освобождается.
func (m *Machine) Remove(id brick.ID) bool {
	b, ok := m.bricks.Get(id)
	if !ok || b.IsBaseplate() {
		return false
	}
	if !m.bricks.Remove(id) {
		return false
	}

	if m.held != nil && m.held.ID() == id {
		m.held = nil
		m.offset = vec.Vec2Float{}
	}
	m.fire()
	return true
}

// Reset бросает кирпич в руке без отпускания (очистка карты, загрузка)
func (m *Machine) Reset() {
	m.held = nil
	m.offset = vec.Vec2Float{}
}

func (m *Machine) fire() {
	if m.trigger != nil {
		m.trigger()
	}
}
