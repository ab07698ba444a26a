package validation

import "sort"

// Типы нарушений
const (
	ErrorOutOfBounds = "out_of_bounds"
	ErrorOverlap     = "overlap"
	ErrorFloating    = "floating"
	ErrorEmptyBrick  = "empty_brick"
)

// Result содержит ответ валидатора
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Error `json:"errors"`
}

// Error описывает одно нарушение. OffendingBricks содержит индексы
// в отправленном массиве bricks.
type Error struct {
	Type            string `json:"type,omitempty"`
	Message         string `json:"message,omitempty"`
	OffendingBricks []int  `json:"offending_bricks"`
}

// Offending возвращает отсортированное множество индексов всех нарушителей
func (r Result) Offending() []int {
	seen := make(map[int]struct{})
	for _, e := range r.Errors {
		for _, idx := range e.OffendingBricks {
			seen[idx] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Count возвращает число нарушений указанного типа
func (r Result) Count(errType string) int {
	n := 0
	for _, e := range r.Errors {
		if e.Type == errType {
			n++
		}
	}
	return n
}
