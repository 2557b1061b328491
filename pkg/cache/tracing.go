package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedCache 为每次缓存操作创建客户端 Span
type tracedCache struct {
	Cache
	tracer trace.Tracer
	driver string
}

// NewTracing 包装带链路追踪的缓存
func NewTracing(c Cache, driver DriverType) Cache {
	return &tracedCache{Cache: c, tracer: otel.Tracer("uskup.cache"), driver: string(driver)}
}

func (t *tracedCache) do(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, "cache."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cache.driver", t.driver),
			attribute.String("cache.key", key),
		),
	)
	defer span.End()

	if err := fn(ctx); err != nil {
		if err != ErrCacheNotFound {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return err
	}
	return nil
}

func (t *tracedCache) Get(ctx context.Context, key string, value any) error {
	return t.do(ctx, "get", key, func(ctx context.Context) error { return t.Cache.Get(ctx, key, value) })
}

func (t *tracedCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return t.do(ctx, "set", key, func(ctx context.Context) error { return t.Cache.Set(ctx, key, value, ttl) })
}

func (t *tracedCache) Delete(ctx context.Context, keys ...string) error {
	key := ""
	if len(keys) > 0 {
		key = keys[0]
	}
	return t.do(ctx, "delete", key, func(ctx context.Context) error { return t.Cache.Delete(ctx, keys...) })
}

func (t *tracedCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var n int64
	err := t.do(ctx, "incr", key, func(ctx context.Context) error {
		var err error
		n, err = t.Cache.Incr(ctx, key, ttl)
		return err
	})
	return n, err
}
