package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/caaluza/internal/mapformat"
)

// ErrNoRemote возвращается, если сессия создана без сервиса карт
var ErrNoRemote = errors.New("editor: map service is not configured")

// Remote описывает сервис хранения и генерации карт
type Remote interface {
	SaveMap(ctx context.Context, name string, m mapformat.Map) (string, error)
	LoadMap(ctx context.Context, name string) (mapformat.Map, error)
	Generate(ctx context.Context, pieces, maxHeight int) (mapformat.Map, error)
}

// Save отправляет текущую карту на сервер под именем name и возвращает её ID.
// При ошибке состояние сессии не меняется.
func (s *Session) Save(ctx context.Context, name, author string) (string, error) {
	if s.remote == nil {
		return "", ErrNoRemote
	}

	m := s.Snapshot(mapformat.NewMetadata(name, author))
	id, err := s.remote.SaveMap(ctx, name, m)
	if err != nil {
		s.log.Error("сохранение карты %q: %v", name, err)
		return "", fmt.Errorf("save map %q: %w", name, err)
	}

	s.mu.Lock()
	s.title = name
	s.mu.Unlock()
	s.log.Info("карта %q сохранена (%d кирпичей)", name, len(m.Bricks))
	return id, nil
}

// Open загружает карту с сервера и заменяет ею поле
func (s *Session) Open(ctx context.Context, name string) ([]mapformat.Problem, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}

	m, err := s.remote.LoadMap(ctx, name)
	if err != nil {
		s.log.Error("загрузка карты %q: %v", name, err)
		return nil, fmt.Errorf("open map %q: %w", name, err)
	}
	if m.Metadata.Name == "" {
		m.Metadata.Name = name
	}
	return s.Load(m), nil
}

// Generate просит сервер собрать случайную карту и открывает её
func (s *Session) Generate(ctx context.Context, pieces, maxHeight int) ([]mapformat.Problem, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}

	m, err := s.remote.Generate(ctx, pieces, maxHeight)
	if err != nil {
		s.log.Error("генерация карты: %v", err)
		return nil, fmt.Errorf("generate map: %w", err)
	}
	return s.Load(m), nil
}
