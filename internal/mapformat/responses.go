package mapformat

// Тела ответов HTTP-сервиса карт

// SaveResponse отвечает на сохранение карты
type SaveResponse struct {
	MapID   string `json:"map_id"`
	Message string `json:"message"`
}

// LoadResponse отвечает на загрузку карты
type LoadResponse struct {
	MapID string `json:"map_id"`
	Map   Map    `json:"map"`
}

// GenerateResponse содержит карту от генератора
type GenerateResponse struct {
	Map Map `json:"map"`
}

// ListResponse перечисляет сохранённые карты
type ListResponse struct {
	Maps []string `json:"maps"`
}

// ErrorResponse описывает ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
