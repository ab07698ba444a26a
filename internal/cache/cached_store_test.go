package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/storage"
	"github.com/annel0/caaluza/internal/vec"
)

// memoryCache хранит кеш в памяти для тестов
type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	gets    int
	hits    int
	failAll bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failAll {
		return nil, errors.New("redis down")
	}
	v, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	m.hits++
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("redis down")
	}
	m.items[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func sample(name string, n int) mapformat.Map {
	m := mapformat.Map{Metadata: mapformat.NewMetadata(name, "")}
	for i := 0; i < n; i++ {
		m.Bricks = append(m.Bricks, mapformat.SerializedBrick{
			Color: "#0055bf", Name: "1x1 Blue", Points: []vec.Vec3{{X: i}},
		})
	}
	return m
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache()
	s := NewCachedStore(storage.NewMemoryStore(), c, time.Minute)

	require.NoError(t, s.Save(ctx, "tower", sample("tower", 2)))

	m, err := s.Load(ctx, "tower")
	require.NoError(t, err)
	assert.Len(t, m.Bricks, 2)
	assert.Equal(t, 0, c.hits, "первое чтение даёт промах")

	m, err = s.Load(ctx, "tower")
	require.NoError(t, err)
	assert.Len(t, m.Bricks, 2)
	assert.Equal(t, 1, c.hits, "второе чтение из кеша")
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache()
	s := NewCachedStore(storage.NewMemoryStore(), c, time.Minute)

	require.NoError(t, s.Save(ctx, "tower", sample("tower", 1)))
	_, err := s.Load(ctx, "tower")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "tower", sample("tower", 5)))
	m, err := s.Load(ctx, "tower")
	require.NoError(t, err)
	assert.Len(t, m.Bricks, 5, "после сохранения кеш не отдаёт старую версию")
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(storage.NewMemoryStore(), newMemoryCache(), time.Minute)

	require.NoError(t, s.Save(ctx, "tower", sample("tower", 1)))
	_, err := s.Load(ctx, "tower")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "tower"))
	_, err = s.Load(ctx, "tower")
	assert.True(t, errors.Is(err, storage.ErrMapNotFound))
}

func TestCachedStore_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache()
	s := NewCachedStore(storage.NewMemoryStore(), c, time.Minute)
	require.NoError(t, s.Save(ctx, "tower", sample("tower", 3)))

	c.failAll = true
	m, err := s.Load(ctx, "tower")
	require.NoError(t, err)
	assert.Len(t, m.Bricks, 3)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tower"}, names)
}
