package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/annel0/caaluza/internal/mapformat"
)

// MemoryStore хранит карты в памяти процесса. Подходит для тестов
// и для запуска сервера без внешних зависимостей.
type MemoryStore struct {
	mu   sync.RWMutex
	maps map[string][]byte
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{maps: make(map[string][]byte)}
}

// Save сохраняет копию карты
func (s *MemoryStore) Save(ctx context.Context, name string, m mapformat.Map) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Храним сериализованную форму, чтобы вызывающий не мог изменить сохранённое
	data, err := encodeMap(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[name] = data
	return nil
}

// Load загружает карту
func (s *MemoryStore) Load(ctx context.Context, name string) (mapformat.Map, error) {
	if err := ctx.Err(); err != nil {
		return mapformat.Map{}, err
	}

	s.mu.RLock()
	data, ok := s.maps[name]
	s.mu.RUnlock()

	if !ok {
		return mapformat.Map{}, notFound(name)
	}
	return decodeMap(data)
}

// Delete удаляет карту
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[name]; !ok {
		return notFound(name)
	}
	delete(s.maps, name)
	return nil
}

// List возвращает имена карт
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.maps))
	for name := range s.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close ничего не делает
func (s *MemoryStore) Close() error { return nil }
