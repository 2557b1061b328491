package middleware

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/errors"
	"github.com/tokmz/uskup/pkg/logger"
)

// RateLimiterConfig 限流中间件配置
type RateLimiterConfig struct {
	// Limit 每个窗口允许的请求数（默认 100）
	Limit int `mapstructure:"limit"`

	// Window 计数窗口（默认 1 分钟）
	Window time.Duration `mapstructure:"window"`

	// Prefix 计数 key 前缀，区分不同限流实例
	Prefix string `mapstructure:"prefix"`

	// Store 计数存储，多实例部署时使用 redis 驱动共享计数
	Store cache.Cache `mapstructure:"-"`

	// KeyFunc 自定义限流 key 函数（默认使用客户端 IP）
	KeyFunc func(c *uskup.Context) string `mapstructure:"-"`

	// SkipFunc 跳过限流的函数
	SkipFunc func(c *uskup.Context) bool `mapstructure:"-"`

	// ExcludePaths 排除的路径（不限流）
	ExcludePaths []string `mapstructure:"exclude_paths"`

	Logger logger.Logger `mapstructure:"-"`
}

// RateLimiter 创建固定窗口限流中间件
// 计数存放在 cache.Cache 中，存储故障时放行请求
func RateLimiter(cfg *RateLimiterConfig) uskup.HandlerFunc {
	if cfg == nil || cfg.Store == nil {
		panic("uskup/middleware: rate limiter requires a cache store")
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit:"
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *uskup.Context) string {
			return c.ClientIP()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	skip := skipper(cfg.ExcludePaths, cfg.SkipFunc)
	limit := strconv.Itoa(cfg.Limit)

	return func(c *uskup.Context) {
		if skip(c) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		slot := time.Now().UnixNano() / int64(cfg.Window)
		counterKey := cfg.Prefix + key + ":" + strconv.FormatInt(slot, 10)

		n, err := cfg.Store.Incr(c.RequestContext(), counterKey, cfg.Window)
		if err != nil {
			cfg.Logger.WarnContext(c.RequestContext(), "rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(int64(cfg.Limit)-n, 0), 10))

		if n > int64(cfg.Limit) {
			cfg.Logger.WarnContext(c.RequestContext(), "rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request().URL.Path),
				zap.Int("limit", cfg.Limit),
			)
			c.RespondError(errors.ErrTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
