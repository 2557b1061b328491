package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

// drivers 返回内存与 miniredis 两种实现
func drivers(t *testing.T) map[string]Cache {
	t.Helper()

	mem, err := New(DefaultConfig())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rcfg := DefaultRedisConfig()
	rcfg.Addr = mr.Addr()
	cfg := DefaultConfig()
	cfg.Driver = DriverRedis
	cfg.Redis = rcfg
	rc, err := New(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = mem.Close()
		_ = rc.Close()
	})
	return map[string]Cache{"memory": mem, "redis": rc}
}

func TestCache_Drivers(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Ping(ctx))

			in := summary{Total: 3, Label: "agenda"}
			require.NoError(t, c.Set(ctx, "s", in, time.Minute))

			var out summary
			require.NoError(t, c.Get(ctx, "s", &out))
			assert.Equal(t, in, out)

			ok, err := c.Exists(ctx, "s")
			require.NoError(t, err)
			assert.True(t, ok)

			ttl, err := c.TTL(ctx, "s")
			require.NoError(t, err)
			assert.Greater(t, ttl, time.Duration(0))

			require.NoError(t, c.Delete(ctx, "s"))
			err = c.Get(ctx, "s", &out)
			assert.True(t, errors.Is(err, ErrCacheNotFound))

			_, err = c.TTL(ctx, "s")
			assert.True(t, errors.Is(err, ErrCacheNotFound))
			assert.True(t, errors.Is(c.Expire(ctx, "s", time.Minute), ErrCacheNotFound))
		})
	}
}

func TestCache_Incr(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			for i := int64(1); i <= 3; i++ {
				n, err := c.Incr(ctx, "login:a@b", time.Minute)
				require.NoError(t, err)
				assert.Equal(t, i, n)
			}
			ttl, err := c.TTL(ctx, "login:a@b")
			require.NoError(t, err)
			assert.Greater(t, ttl, time.Duration(0))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Driver = "disk"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Driver = DriverRedis
	assert.Error(t, cfg.Validate())

	cfg.Redis = &RedisConfig{Mode: RedisSentinel, Addrs: []string{"a:1"}}
	assert.Error(t, cfg.Validate())

	cfg.Redis.MasterName = "mymaster"
	assert.NoError(t, cfg.Validate())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	rcfg := DefaultRedisConfig()
	rcfg.Addr = "127.0.0.1:1"
	rcfg.DialTimeout = 200 * time.Millisecond
	rcfg.MaxRetries = -1

	_, err := NewRedisClient(rcfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCacheConnection))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)

	calls := 0
	load := func(context.Context) (summary, error) {
		calls++
		return summary{Total: calls}, nil
	}

	v, err := Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Total)

	v, err = Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Total)
	assert.Equal(t, 1, calls)
}

func TestRememberWithLock_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)
	l := NewLoader(NewTracing(c, DriverMemory))

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (summary, error) {
		calls.Add(1)
		<-release
		return summary{Total: 7, Label: "dash"}, nil
	}

	var wg sync.WaitGroup
	results := make([]summary, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := RememberWithLock(ctx, l, "dash", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 7, r.Total)
	}

	// 命中缓存后返回反序列化的值
	v, err := RememberWithLock(ctx, l, "dash", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "dash", v.Label)

	require.NoError(t, l.Forget(ctx, "dash"))
	ok, _ := l.Cache().Exists(ctx, "dash")
	assert.False(t, ok)
}

func TestRememberWithLock_Error(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	l := NewLoader(c)

	boom := errors.New("db down")
	_, err = RememberWithLock(context.Background(), l, "x", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}
