// Package editor связывает коллекцию кирпичей, автомат перетаскивания,
// формат карт и внешние сервисы в одну сессию редактора.
//
// Все намерения пользователя (нажатие кнопки, движение указателя, клавиши)
// превращаются в вызовы методов Session. Методы-намерения не возвращают
// ошибок: недопустимое действие означает no-op с результатом false.
package editor

import (
	"sync"
	"time"

	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/placement"
	"github.com/annel0/caaluza/internal/validation"
	"github.com/annel0/caaluza/internal/vec"
)

// DefaultTitle используется как заголовок новой карты
const DefaultTitle = "Untitled Map"

// DefaultValidationTimeout ограничивает один запрос валидации
const DefaultValidationTimeout = 5 * time.Second

// Mode определяет режим редактора
type Mode int

const (
	// ModeEdit: кирпичи можно добавлять, двигать и удалять
	ModeEdit Mode = iota
	// ModePlay: только просмотр
	ModePlay
)

func (m Mode) String() string {
	if m == ModePlay {
		return "play"
	}
	return "edit"
}

// Options настраивает сессию
type Options struct {
	BaseplateSize     int
	Validator         Validator // nil: валидация отключена
	Remote            Remote    // nil: сохранение и загрузка недоступны
	ValidationTimeout time.Duration
	Logger            *logging.Logger

	// OnValidated вызывается после применения актуального ответа валидатора
	OnValidated func(validation.Result)
}

// Session хранит состояние одного открытого редактора
type Session struct {
	mu      sync.Mutex
	bricks  *brick.Manager
	machine *placement.Machine
	mode    Mode
	title   string
	log     *logging.Logger

	remote  Remote
	tracker *tracker
}

// New создаёт сессию с пустой пластиной
func New(opts Options) *Session {
	if opts.BaseplateSize <= 0 {
		opts.BaseplateSize = grid.DefaultSize
	}
	if opts.ValidationTimeout <= 0 {
		opts.ValidationTimeout = DefaultValidationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetEditorLogger()
	}

	s := &Session{
		bricks: brick.NewManager(opts.BaseplateSize),
		title:  DefaultTitle,
		log:    opts.Logger,
		remote: opts.Remote,
	}
	s.tracker = newTracker(s, opts.Validator, opts.ValidationTimeout, opts.OnValidated)
	s.machine = placement.NewMachine(s.bricks, s.tracker.request)
	return s
}

// Mode возвращает текущий режим
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode переключает режим. Кирпич в руке при переходе в просмотр отпускается.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == s.mode {
		return
	}
	if m == ModePlay && s.machine.State() == placement.Dragging {
		s.machine.EndDrag()
	}
	s.mode = m
	s.log.Debug("режим редактора: %s", m)
}

// Title возвращает имя открытой карты
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// State возвращает состояние автомата перетаскивания
func (s *Session) State() placement.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Held возвращает ID кирпича в руке
func (s *Session) Held() (brick.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Held()
}

// PressSelector создаёт кирпич по подписи кнопки ("1x2 Red") в точке at
// и сразу берёт его в руку. Кнопка неактивна, пока кирпич с такой подписью
// есть на поле, и пока в руке уже что-то есть.
func (s *Session) PressSelector(label string, at vec.Vec2Float) (brick.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEdit || s.machine.State() != placement.Idle {
		return 0, false
	}
	if _, live := s.bricks.FindLabel(label); live {
		return 0, false
	}

	sel, err := mapformat.ParseSelector(label)
	if err != nil {
		s.log.Warn("неизвестная кнопка выбора: %v", err)
		return 0, false
	}

	cell := grid.Snap(at, vec.Vec2Float{})
	b := brick.New(vec.Vec3{X: cell.X, Y: 0, Z: cell.Z}, sel.Color, sel.Footprint, sel.Label)
	if !s.bricks.Add(b) {
		return 0, false
	}
	if !s.machine.BeginDrag(b, vec.Vec2Float{}) {
		s.bricks.Remove(b.ID())
		return 0, false
	}
	return b.ID(), true
}

// Pick берёт в руку уже лежащий кирпич. hit задаёт точку попадания указателя
// на плоскости; разница с якорем сохраняется как смещение захвата.
func (s *Session) Pick(id brick.ID, hit vec.Vec2Float) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEdit {
		return false
	}
	b, ok := s.bricks.Get(id)
	if !ok {
		return false
	}
	offset := hit.Sub(vec.FromVec2(b.Anchor().Horizontal()))
	return s.machine.BeginDrag(b, offset)
}

// Move передвигает кирпич в руке за указателем
func (s *Session) Move(x, z float64) bool {
	return s.edit(func() bool { return s.machine.UpdatePosition(x, z) })
}

// Rotate поворачивает кирпич в руке на 90°
func (s *Session) Rotate() bool {
	return s.edit(s.machine.Rotate)
}

// Raise поднимает кирпич в руке на одну клетку
func (s *Session) Raise() bool {
	return s.edit(func() bool { return s.machine.AdjustVertical(1) })
}

// Lower опускает кирпич в руке на одну клетку
func (s *Session) Lower() bool {
	return s.edit(func() bool { return s.machine.AdjustVertical(-1) })
}

// Drop отпускает кирпич в руке и запускает валидацию
func (s *Session) Drop() bool {
	return s.edit(s.machine.EndDrag)
}

// Remove удаляет кирпич и запускает валидацию
func (s *Session) Remove(id brick.ID) bool {
	return s.edit(func() bool { return s.machine.Remove(id) })
}

func (s *Session) edit(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeEdit {
		return false
	}
	return fn()
}

// Load заменяет содержимое поля картой m. Неполные кирпичи пропускаются,
// список проблем возвращается вызывающему.
func (s *Session) Load(m mapformat.Map) []mapformat.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(m)
}

func (s *Session) loadLocked(m mapformat.Map) []mapformat.Problem {
	s.resetLocked()

	loaded, problems := mapformat.FromWire(m)
	for _, l := range loaded {
		s.bricks.Add(l.Build())
	}
	for _, p := range problems {
		s.log.Warn("загрузка карты %q: %s", m.Metadata.Name, p)
	}

	if m.Metadata.Name != "" {
		s.title = m.Metadata.Name
	}
	s.log.Info("загружена карта %q: %d кирпичей", s.title, len(loaded))
	return problems
}

// StartOver очищает поле, пластина остаётся
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.title = DefaultTitle
}

func (s *Session) resetLocked() {
	s.machine.Reset()
	s.bricks.Clear()
	// Ответы на запросы по старому полю больше не актуальны
	s.tracker.invalidateLocked()
}

// Snapshot сериализует отпущенные кирпичи
func (s *Session) Snapshot(meta mapformat.Metadata) mapformat.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapformat.ToWire(s.bricks.All(), meta)
}

// Wait блокируется, пока не завершатся все запущенные валидации
func (s *Session) Wait() {
	s.tracker.wait()
}
