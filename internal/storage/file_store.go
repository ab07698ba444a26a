package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/caaluza/internal/mapformat"
)

const (
	jsonExt = ".json"
	zstdExt = ".json.zst"
)

// FileStore хранит каждую карту отдельным JSON-файлом в каталоге.
// При включённом сжатии файлы пишутся в zstd; читаются оба вида.
type FileStore struct {
	basePath string
	compress bool
	mu       sync.RWMutex

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore создаёт файловое хранилище в каталоге basePath
func NewFileStore(basePath string, compress bool) (*FileStore, error) {
	// Создаём директорию если её нет
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	return &FileStore{
		basePath: basePath,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

func (fs *FileStore) path(name, ext string) string {
	return filepath.Join(fs.basePath, name+ext)
}

// Save записывает карту атомарно: сначала во временный файл, затем rename
func (fs *FileStore) Save(ctx context.Context, name string, m mapformat.Map) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeMap(m)
	if err != nil {
		return err
	}

	ext, stale := jsonExt, zstdExt
	if fs.compress {
		data = fs.encoder.EncodeAll(data, nil)
		ext, stale = zstdExt, jsonExt
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	target := fs.path(name, ext)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи карты %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ошибка записи карты %s: %w", name, err)
	}

	// Карта могла быть сохранена раньше в другом формате
	if err := os.Remove(fs.path(name, stale)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления старой версии карты %s: %w", name, err)
	}
	return nil
}

// Load читает карту
func (fs *FileStore) Load(ctx context.Context, name string) (mapformat.Map, error) {
	if err := ValidateName(name); err != nil {
		return mapformat.Map{}, notFound(name)
	}
	if err := ctx.Err(); err != nil {
		return mapformat.Map{}, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.path(name, zstdExt))
	switch {
	case err == nil:
		data, err = fs.decoder.DecodeAll(data, nil)
		if err != nil {
			return mapformat.Map{}, fmt.Errorf("ошибка распаковки карты %s: %w", name, err)
		}
	case os.IsNotExist(err):
		data, err = os.ReadFile(fs.path(name, jsonExt))
		if os.IsNotExist(err) {
			return mapformat.Map{}, notFound(name)
		}
		if err != nil {
			return mapformat.Map{}, fmt.Errorf("ошибка чтения карты %s: %w", name, err)
		}
	default:
		return mapformat.Map{}, fmt.Errorf("ошибка чтения карты %s: %w", name, err)
	}

	return decodeMap(data)
}

// Delete удаляет файлы карты
func (fs *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return notFound(name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	removed := false
	for _, ext := range []string{jsonExt, zstdExt} {
		err := os.Remove(fs.path(name, ext))
		if err == nil {
			removed = true
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
		}
	}
	if !removed {
		return notFound(name)
	}
	return nil
}

// List перечисляет карты в каталоге
func (fs *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога %s: %w", fs.basePath, err)
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var name string
		switch n := e.Name(); {
		case strings.HasSuffix(n, zstdExt):
			name = strings.TrimSuffix(n, zstdExt)
		case strings.HasSuffix(n, jsonExt):
			name = strings.TrimSuffix(n, jsonExt)
		default:
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close освобождает кодеки
func (fs *FileStore) Close() error {
	fs.encoder.Close()
	fs.decoder.Close()
	return nil
}
