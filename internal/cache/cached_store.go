package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/storage"
)

const mapKeyPrefix = "caaluza:map:"

// CachedStore реализует read-through кеш перед любым storage.MapStore.
// Сохранение и удаление сбрасывают ключ. Ошибки кеша только логируются:
// источником истины остаётся хранилище.
type CachedStore struct {
	store storage.MapStore
	cache Cache
	ttl   time.Duration
	log   *logging.Logger
}

// NewCachedStore оборачивает store кешем
func NewCachedStore(store storage.MapStore, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   logging.GetStorageLogger(),
	}
}

func mapKey(name string) string {
	return mapKeyPrefix + name
}

// Save сохраняет карту в хранилище и сбрасывает кеш
func (c *CachedStore) Save(ctx context.Context, name string, m mapformat.Map) error {
	if err := c.store.Save(ctx, name, m); err != nil {
		return err
	}
	c.invalidate(ctx, name)
	return nil
}

// Load читает карту из кеша, при промахе из хранилища
func (c *CachedStore) Load(ctx context.Context, name string) (mapformat.Map, error) {
	data, err := c.cache.Get(ctx, mapKey(name))
	if err == nil {
		var m mapformat.Map
		if err := json.Unmarshal(data, &m); err == nil {
			return m, nil
		}
		c.log.Warn("повреждённая запись кеша %s, читаем из хранилища", name)
	} else if !IsCacheMiss(err) {
		c.log.Warn("ошибка чтения кеша для %s: %v", name, err)
	}

	m, err := c.store.Load(ctx, name)
	if err != nil {
		return mapformat.Map{}, err
	}

	if data, err := json.Marshal(m); err == nil {
		if err := c.cache.Set(ctx, mapKey(name), data, c.ttl); err != nil {
			c.log.Warn("ошибка записи кеша для %s: %v", name, err)
		}
	}
	return m, nil
}

// Delete удаляет карту и сбрасывает кеш
func (c *CachedStore) Delete(ctx context.Context, name string) error {
	err := c.store.Delete(ctx, name)
	// Кеш сбрасывается и при ErrMapNotFound: запись могла пережить удаление
	c.invalidate(ctx, name)
	return err
}

// List не кешируется
func (c *CachedStore) List(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// Close закрывает кеш и хранилище
func (c *CachedStore) Close() error {
	cacheErr := c.cache.Close()
	if err := c.store.Close(); err != nil {
		return err
	}
	return cacheErr
}

func (c *CachedStore) invalidate(ctx context.Context, name string) {
	if err := c.cache.Delete(ctx, mapKey(name)); err != nil {
		c.log.Warn("ошибка сброса кеша для %s: %v", name, err)
	}
}
