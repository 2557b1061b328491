package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/tokmz/uskup"
	bizerrors "github.com/tokmz/uskup/pkg/errors"
)

// TimeoutConfig 超时中间件配置
type TimeoutConfig struct {
	// Timeout 请求超时时间（默认 30 秒）
	Timeout time.Duration `mapstructure:"timeout"`

	// SkipFunc 跳过超时控制的函数
	SkipFunc func(c *uskup.Context) bool `mapstructure:"-"`

	// ExcludePaths 排除的路径（不做超时控制）
	ExcludePaths []string `mapstructure:"exclude_paths"`
}

// Timeout 创建超时中间件
// 注入带超时的 context，handler 通过 ctx.Done() 感知超时；WebSocket 升级请求不受控制
func Timeout(cfgs ...*TimeoutConfig) uskup.HandlerFunc {
	cfg := &TimeoutConfig{Timeout: 30 * time.Second}
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	}
	skip := skipper(cfg.ExcludePaths, cfg.SkipFunc)

	return func(c *uskup.Context) {
		if cfg.Timeout <= 0 || IsWebSocket(c) || skip(c) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		defer cancel()
		c.SetRequestContext(ctx)

		// 在当前 goroutine 中执行，handler 完成后检查是否已超时
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer().Written() {
			c.RespondError(bizerrors.ErrRequestTimeout)
			c.Abort()
		}
	}
}
