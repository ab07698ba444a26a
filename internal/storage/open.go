package storage

import (
	"fmt"
	"strings"
)

// Имена бэкендов в конфигурации
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMongo  = "mongo"
	BackendMaria  = "maria"
)

// Options выбирает и настраивает бэкенд хранилища
type Options struct {
	Backend  string
	Path     string // каталог для file и badger
	Compress bool   // zstd для file
	DSN      string // строка подключения MariaDB
	Mongo    MongoConfig
}

// Open создаёт хранилище по настройкам
func Open(opts Options) (MapStore, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Path, opts.Compress)
	case BackendBadger:
		return NewBadgerStore(opts.Path)
	case BackendMongo:
		return NewMongoStore(opts.Mongo)
	case BackendMaria:
		return NewMariaStore(opts.DSN)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", opts.Backend)
	}
}
