package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCache 进程内缓存（go-cache）
type memoryCache struct {
	cache      *gocache.Cache
	serializer Serializer
	keyPrefix  string
	defaultTTL time.Duration
	mu         sync.Mutex // 保护 Incr 的读改写
}

func newMemoryCache(cfg *Config) *memoryCache {
	mem := cfg.Memory
	if mem == nil {
		mem = DefaultMemoryConfig()
	}
	return &memoryCache{
		cache:      gocache.New(cfg.DefaultTTL, mem.CleanupInterval),
		serializer: cfg.Serializer,
		keyPrefix:  cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTL,
	}
}

func (m *memoryCache) key(k string) string { return m.keyPrefix + k }

func (m *memoryCache) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return m.defaultTTL
	}
	return ttl
}

func (m *memoryCache) Get(_ context.Context, key string, value any) error {
	data, found := m.cache.Get(m.key(key))
	if !found {
		return ErrCacheNotFound
	}
	b, ok := data.([]byte)
	if !ok {
		return ErrCacheSerialization.WithMessage("invalid cache data type")
	}
	if err := m.serializer.Unmarshal(b, value); err != nil {
		return ErrCacheSerialization.WithError(err)
	}
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := m.serializer.Marshal(value)
	if err != nil {
		return ErrCacheSerialization.WithError(err)
	}
	m.cache.Set(m.key(key), b, m.ttl(ttl))
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.cache.Delete(m.key(k))
	}
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, found := m.cache.Get(m.key(key))
	return found, nil
}

func (m *memoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.key(key)
	if _, found := m.cache.Get(k); !found {
		m.cache.Set(k, int64(1), m.ttl(ttl))
		return 1, nil
	}
	n, err := m.cache.IncrementInt64(k, 1)
	if err != nil {
		return 0, ErrCacheOperation.WithError(err)
	}
	return n, nil
}

func (m *memoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	k := m.key(key)
	v, found := m.cache.Get(k)
	if !found {
		return ErrCacheNotFound
	}
	m.cache.Set(k, v, ttl)
	return nil
}

func (m *memoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	_, exp, found := m.cache.GetWithExpiration(m.key(key))
	if !found {
		return 0, ErrCacheNotFound
	}
	if exp.IsZero() {
		return -1, nil
	}
	return time.Until(exp), nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) Close() error {
	m.cache.Flush()
	return nil
}
