package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader 同一 key 的并发回源合并为一次（防击穿）
type Loader struct {
	cache Cache
	group singleflight.Group
}

// NewLoader 创建回源合并器
func NewLoader(c Cache) *Loader {
	return &Loader{cache: c}
}

// Cache 返回底层缓存
func (l *Loader) Cache() Cache { return l.cache }

// Forget 删除缓存并清除进行中的合并状态
func (l *Loader) Forget(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		l.group.Forget(k)
	}
	return l.cache.Delete(ctx, keys...)
}

// Remember 命中直接返回，未命中时回源并写入缓存（不合并并发）
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var result T
	if err := c.Get(ctx, key, &result); err == nil {
		return result, nil
	}
	result, err := fn(ctx)
	if err != nil {
		return result, err
	}
	_ = c.Set(ctx, key, result, ttl)
	return result, nil
}

// RememberWithLock 与 Remember 相同，但同一 key 的并发回源只执行一次
// 缓存写入失败不影响返回值
func RememberWithLock[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var result T
	if err := l.cache.Get(ctx, key, &result); err == nil {
		return result, nil
	} else if !errors.Is(err, ErrCacheNotFound) {
		return fn(ctx)
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		var cached T
		if err := l.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
		loaded, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = l.cache.Set(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
