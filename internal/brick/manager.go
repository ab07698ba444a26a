package brick

import "sync"

// Manager владеет упорядоченной коллекцией кирпичей сессии.
// Порядок вставки важен: индексы в ответе валидатора ссылаются на него.
type Manager struct {
	mu        sync.RWMutex
	bricks    []*Brick
	index     map[ID]*Brick
	baseplate *Brick
}

// NewManager создаёт менеджер с пластиной заданного размера
func NewManager(baseplateSize int) *Manager {
	m := &Manager{
		index: make(map[ID]*Brick),
	}
	if baseplateSize > 0 {
		m.baseplate = NewBaseplate(baseplateSize)
		m.index[m.baseplate.ID()] = m.baseplate
	}
	return m
}

// Baseplate возвращает пластину (может быть nil)
func (m *Manager) Baseplate() *Brick {
	return m.baseplate
}

// Add добавляет кирпич. Повторное добавление того же кирпича отклоняется.
func (m *Manager) Add(b *Brick) bool {
	if b == nil || b.IsBaseplate() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[b.ID()]; exists {
		return false
	}
	m.bricks = append(m.bricks, b)
	m.index[b.ID()] = b
	return true
}

// Remove удаляет кирпич. Возвращает false, если кирпича нет или это пластина.
func (m *Manager) Remove(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, exists := m.index[id]
	if !exists || b.IsBaseplate() {
		return false
	}
	delete(m.index, id)
	for i, candidate := range m.bricks {
		if candidate.ID() == id {
			m.bricks = append(m.bricks[:i], m.bricks[i+1:]...)
			break
		}
	}
	return true
}

// Get возвращает кирпич по ID (включая пластину)
func (m *Manager) Get(id ID) (*Brick, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.index[id]
	return b, ok
}

// All возвращает копию списка кирпичей без пластины
func (m *Manager) All() []*Brick {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Brick, len(m.bricks))
	copy(out, m.bricks)
	return out
}

// Placed возвращает отпущенные кирпичи (Dropped и Invalid) без пластины
// в порядке вставки; именно этот массив уходит валидатору.
func (m *Manager) Placed() []*Brick {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Brick, 0, len(m.bricks))
	for _, b := range m.bricks {
		if b.IsPlaced() {
			out = append(out, b)
		}
	}
	return out
}

// FindLabel ищет живой кирпич с указанной подписью
func (m *Manager) FindLabel(label string) (*Brick, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bricks {
		if b.Label() == label {
			return b, true
		}
	}
	return nil, false
}

// Len возвращает число кирпичей без пластины
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bricks)
}

// Clear удаляет все кирпичи, пластина остаётся
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bricks = nil
	m.index = make(map[ID]*Brick)
	if m.baseplate != nil {
		m.index[m.baseplate.ID()] = m.baseplate
	}
}
