package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/caaluza/internal/grid"
)

// EnvConfigPath указывает переменную окружения с путём к файлу конфигурации
const EnvConfigPath = "CAALUZA_CONFIG"

// Config корневая структура конфигурации сервиса карт
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Grid      GridConfig      `yaml:"grid"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	RESTPort        int           `yaml:"rest_port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
	Dir   string `yaml:"dir"`
}

type StorageConfig struct {
	Backend  string      `yaml:"backend"` // memory | file | badger | mongo | maria
	Path     string      `yaml:"path"`
	Compress bool        `yaml:"compress"`
	DSN      string      `yaml:"dsn"`
	Mongo    MongoConfig `yaml:"mongo"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RedisURL      string        `yaml:"redis_url"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

type EventBusConfig struct {
	Backend   string `yaml:"backend"` // memory | jetstream
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Capacity  int    `yaml:"capacity"`
}

// GridConfig задаёт поле для валидатора и генератора
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "CAALUZA_REST_PORT", 5000)
}

// Addr возвращает адрес для net.Listen
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GetRESTPort())
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Bounds возвращает границы поля; незаданные размеры берутся стандартными
func (g GridConfig) Bounds() grid.Bounds {
	b := grid.DefaultBounds()
	if g.Width > 0 {
		b.Width = g.Width
	}
	if g.Height > 0 {
		b.Height = g.Height
	}
	if g.Depth > 0 {
		b.Depth = g.Depth
	}
	return b
}

// Default возвращает конфигурацию для запуска без файла
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Dir: "logs"},
		Storage: StorageConfig{Backend: "memory", Path: "data"},
		Cache: CacheConfig{
			RedisURL: "localhost:6379",
			TTL:      10 * time.Minute,
		},
		EventBus: EventBusConfig{
			Backend:   "memory",
			Stream:    "CAALUZA",
			Retention: 24,
			Capacity:  256,
		},
		Telemetry: TelemetryConfig{ServiceName: "caaluza"},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся ENV CAALUZA_CONFIG; если и он пуст, возвращаются дефолты.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return cfg, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет взаимосвязанные поля
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "memory", "file", "badger", "mongo", "maria":
	default:
		return fmt.Errorf("storage.backend: неизвестный бэкенд %q", c.Storage.Backend)
	}
	if (c.Storage.Backend == "file" || c.Storage.Backend == "badger") && c.Storage.Path == "" {
		return fmt.Errorf("storage.path обязателен для бэкенда %s", c.Storage.Backend)
	}
	if c.Storage.Backend == "maria" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn обязателен для бэкенда maria")
	}

	switch c.EventBus.Backend {
	case "", "memory":
	case "jetstream":
		if c.EventBus.URL == "" {
			return fmt.Errorf("eventbus.url обязателен для jetstream")
		}
	default:
		return fmt.Errorf("eventbus.backend: неизвестный бэкенд %q", c.EventBus.Backend)
	}

	if c.Grid.Width < 0 || c.Grid.Height < 0 || c.Grid.Depth < 0 {
		return fmt.Errorf("grid: размеры не могут быть отрицательными")
	}
	return nil
}
