package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/caaluza/internal/logging"
)

// RedisCache реализует Cache поверх Redis.
// Собирает метрики попаданий и задержек.
type RedisCache struct {
	client *redis.Client
	config *Config

	totalRequests int64
	hits          int64
	misses        int64

	// Статистика latency (в наносекундах)
	latencyMu    sync.Mutex
	latencySum   int64
	latencyCount int64
	maxLatency   int64
}

// NewRedisCache создаёт Redis кеш и проверяет соединение.
func NewRedisCache(config *Config) (*RedisCache, error) {
	if config == nil {
		config = &Config{}
	}
	// Настройки по умолчанию
	if config.RedisURL == "" {
		config.RedisURL = "localhost:6379"
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.MaxTTL == 0 {
		config.MaxTTL = 24 * time.Hour
	}
	if config.MaxConnections == 0 {
		config.MaxConnections = 10
	}
	if config.PoolTimeout == 0 {
		config.PoolTimeout = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.RedisURL,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		PoolSize:     config.MaxConnections,
		PoolTimeout:  config.PoolTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis cache initialized: %s (ttl %s)", config.RedisURL, config.DefaultTTL)
	return &RedisCache{client: rdb, config: config}, nil
}

// Get получает значение по ключу
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer r.recordLatency(start)

	atomic.AddInt64(&r.totalRequests, 1)

	val, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		atomic.AddInt64(&r.hits, 1)
		return val, nil
	}

	atomic.AddInt64(&r.misses, 1)
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return nil, fmt.Errorf("redis get error: %w", err)
}

// Set сохраняет значение; TTL ограничен сверху MaxTTL
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer r.recordLatency(start)

	if ttl <= 0 {
		ttl = r.config.DefaultTTL
	}
	if ttl > r.config.MaxTTL {
		ttl = r.config.MaxTTL
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete удаляет ключ
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Close закрывает соединение
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// GetMetrics возвращает снимок метрик
func (r *RedisCache) GetMetrics() Metrics {
	m := Metrics{
		TotalRequests: atomic.LoadInt64(&r.totalRequests),
		CacheHits:     atomic.LoadInt64(&r.hits),
		CacheMisses:   atomic.LoadInt64(&r.misses),
		LastUpdate:    time.Now(),
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(m.TotalRequests)
	}

	r.latencyMu.Lock()
	if r.latencyCount > 0 {
		m.AvgLatencyMs = float64(r.latencySum) / float64(r.latencyCount) / float64(time.Millisecond)
	}
	m.MaxLatencyMs = float64(r.maxLatency) / float64(time.Millisecond)
	r.latencyMu.Unlock()
	return m
}

func (r *RedisCache) recordLatency(start time.Time) {
	latency := time.Since(start).Nanoseconds()

	r.latencyMu.Lock()
	defer r.latencyMu.Unlock()
	r.latencySum += latency
	r.latencyCount++
	if latency > r.maxLatency {
		r.maxLatency = latency
	}
}
