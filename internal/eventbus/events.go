package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий сервиса карт
const (
	EventMapSaved     = "MapSaved"
	EventMapDeleted   = "MapDeleted"
	EventMapValidated = "MapValidated"
	EventMapGenerated = "MapGenerated"
)

// DefaultSource пишется в поле Source
const DefaultSource = "caaluza"

// MapSaved: карта сохранена или перезаписана
type MapSaved struct {
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
	Bricks int    `json:"bricks"`
}

// MapDeleted: карта удалена
type MapDeleted struct {
	Name string `json:"name"`
}

// MapValidated: выполнен проход валидации
type MapValidated struct {
	Name      string `json:"name,omitempty"`
	Bricks    int    `json:"bricks"`
	Valid     bool   `json:"valid"`
	Errors    int    `json:"errors"`
	Offending []int  `json:"offending,omitempty"`
}

// MapGenerated: генератор собрал карту
type MapGenerated struct {
	Pieces    int   `json:"pieces"`
	MaxHeight int   `json:"max_height"`
	Seed      int64 `json:"seed"`
	Bricks    int   `json:"bricks"`
}

// NewEnvelope упаковывает полезную нагрузку в конверт с новым UUID
func NewEnvelope(eventType string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    DefaultSource,
		EventType: eventType,
		Version:   1,
		Payload:   data,
	}, nil
}

// Decode распаковывает полезную нагрузку конверта
func (e *Envelope) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return nil
}
