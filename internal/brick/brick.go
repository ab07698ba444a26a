package brick

import (
	"fmt"
	"sync/atomic"

	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/vec"
)

// ID идентифицирует кирпич в пределах процесса.
// Не сохраняется: при загрузке кирпичи получают новые ID.
type ID uint64

var nextID atomic.Uint64

func newID() ID {
	return ID(nextID.Add(1))
}

// State описывает стадию жизненного цикла кирпича
type State int

const (
	// InHand: кирпич тащат, в карту он не входит
	InHand State = iota
	// Dropped: кирпич отпущен на сетку и входит в карту
	Dropped
	// Invalid: валидатор пометил кирпич; это только отметка для отображения
	Invalid
)

func (s State) String() string {
	switch s {
	case InHand:
		return "InHand"
	case Dropped:
		return "Dropped"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// BaseplateLabel задаёт имя пластины
const BaseplateLabel = "Baseplate"

// Brick представляет размещаемый кирпич
type Brick struct {
	id        ID
	anchor    vec.Vec3
	footprint grid.Footprint
	color     Color
	label     string
	state     State
	rotation  grid.Rotation
	baseplate bool
}

// New создаёт кирпич в руке (InHand). Входные данные проверяет вызывающий.
func New(anchor vec.Vec3, color Color, footprint grid.Footprint, label string) *Brick {
	return &Brick{
		id:        newID(),
		anchor:    anchor,
		footprint: footprint,
		color:     color,
		label:     label,
		state:     InHand,
	}
}

// NewDropped создаёт уже отпущенный кирпич (используется при загрузке карты)
func NewDropped(anchor vec.Vec3, color Color, footprint grid.Footprint, label string) *Brick {
	b := New(anchor, color, footprint, label)
	b.state = Dropped
	return b
}

// NewBaseplate создаёт серую пластину size x size. Она всегда Dropped,
// её нельзя тащить и удалять, и она не попадает в сохраняемую карту.
func NewBaseplate(size int) *Brick {
	return &Brick{
		id:        newID(),
		anchor:    grid.BaseplateAnchor(),
		footprint: grid.BaseplateFootprint(size),
		color:     Gray,
		label:     BaseplateLabel,
		state:     Dropped,
		baseplate: true,
	}
}

func (b *Brick) ID() ID                    { return b.id }
func (b *Brick) Anchor() vec.Vec3          { return b.anchor }
func (b *Brick) Footprint() grid.Footprint { return b.footprint }
func (b *Brick) Color() Color              { return b.color }
func (b *Brick) Label() string             { return b.label }
func (b *Brick) State() State              { return b.state }
func (b *Brick) Rotation() grid.Rotation   { return b.rotation }
func (b *Brick) IsBaseplate() bool         { return b.baseplate }

// IsPlaced возвращает true для кирпичей, входящих в карту (Dropped или Invalid)
func (b *Brick) IsPlaced() bool {
	return b.state == Dropped || b.state == Invalid
}

// EffectiveFootprint возвращает габариты с учётом поворота
func (b *Brick) EffectiveFootprint() grid.Footprint {
	return b.rotation.Effective(b.footprint)
}

// SetPosition меняет только горизонтальные координаты якоря
func (b *Brick) SetPosition(x, z int) {
	b.anchor = b.anchor.WithHorizontal(vec.Vec2{X: x, Z: z})
}

// Step сдвигает кирпич по вертикали на dy клеток
func (b *Brick) Step(dy int) {
	b.anchor.Y += dy
}

// Rotate поворачивает кирпич на 90°. Якорь не пересчитывается.
func (b *Brick) Rotate() {
	b.rotation = b.rotation.Next()
}

// MarkDropped переводит кирпич в Dropped (повторный вызов безопасен)
func (b *Brick) MarkDropped() {
	b.state = Dropped
}

// MarkInvalid помечает отпущенный кирпич как нарушающий правила.
// Для пластины и кирпича в руке ничего не делает.
func (b *Brick) MarkInvalid() bool {
	if b.baseplate || b.state != Dropped {
		return false
	}
	b.state = Invalid
	return true
}

// ResetValidity снимает отметку Invalid
func (b *Brick) ResetValidity() bool {
	if b.baseplate || b.state != Invalid {
		return false
	}
	b.state = Dropped
	return true
}

// CoveredCells перечисляет клетки под кирпичом в стабильном порядке
func (b *Brick) CoveredCells() []vec.Vec3 {
	return grid.Cells(b.anchor, b.footprint, b.rotation)
}

func (b *Brick) String() string {
	return fmt.Sprintf("brick#%d %q %s at %v rot=%d %s", b.id, b.label, b.footprint, b.anchor, b.rotation.Degrees(), b.state)
}
