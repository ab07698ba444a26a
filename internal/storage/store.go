package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/caaluza/internal/mapformat"
)

var (
	// ErrMapNotFound возвращается, если карты с таким именем нет
	ErrMapNotFound = errors.New("map not found")
	// ErrInvalidName возвращается для пустых и небезопасных имён
	ErrInvalidName = errors.New("invalid map name")
)

// MaxNameLength ограничивает длину имени карты
const MaxNameLength = 128

// MapStore определяет интерфейс хранилища карт.
// Карты адресуются именем; повторное сохранение перезаписывает карту.
type MapStore interface {
	// Save сохраняет карту под именем name
	Save(ctx context.Context, name string, m mapformat.Map) error

	// Load загружает карту; ErrMapNotFound, если её нет
	Load(ctx context.Context, name string) (mapformat.Map, error)

	// Delete удаляет карту; ErrMapNotFound, если её нет
	Delete(ctx context.Context, name string) error

	// List возвращает имена всех карт в алфавитном порядке
	List(ctx context.Context) ([]string, error)

	// Close освобождает ресурсы хранилища
	Close() error
}

// ValidateName проверяет имя карты
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrMapNotFound, name)
}

func encodeMap(m mapformat.Map) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации карты: %w", err)
	}
	return data, nil
}

func decodeMap(data []byte) (mapformat.Map, error) {
	var m mapformat.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return mapformat.Map{}, fmt.Errorf("ошибка десериализации карты: %w", err)
	}
	return m, nil
}
