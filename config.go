package uskup

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokmz/uskup/pkg/logger"
)

// ServerConfig 服务器配置
type ServerConfig struct {
	// Addr 监听地址，默认 ":8080"
	Addr string `mapstructure:"addr"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// MaxHeaderBytes 最大请求头字节数
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// ShutdownConfig 关机配置
type ShutdownConfig struct {
	// Timeout 关机超时时间，默认 10 秒
	Timeout time.Duration `mapstructure:"timeout"`

	// BeforeShutdown 关机前回调（先于 http.Server.Shutdown 执行）
	BeforeShutdown func() `mapstructure:"-"`

	// AfterShutdown 关机后回调
	AfterShutdown func() `mapstructure:"-"`
}

// Config 应用配置
type Config struct {
	// Mode 运行模式：debug, release, test
	Mode string

	Server   ServerConfig
	Shutdown ShutdownConfig

	// TrustedProxies 信任的代理 IP
	TrustedProxies []string

	// MaxMultipartMemory 最大 multipart 内存（字节）
	MaxMultipartMemory int64

	// Logger 框架日志，nil 时使用 Nop
	Logger logger.Logger

	// Banner 启动时打印 banner 与路由表
	Banner bool
}

// Option 配置选项函数
type Option func(*Config)

// defaultConfig 返回默认配置
func defaultConfig() *Config {
	return &Config{
		Mode: gin.DebugMode,
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1MB
		},
		Shutdown: ShutdownConfig{
			Timeout: 10 * time.Second,
		},
		MaxMultipartMemory: 32 << 20, // 32MB
		Banner:             true,
	}
}

// WithMode 设置运行模式
func WithMode(mode string) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithAddr 设置监听地址
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Server.Addr = addr
	}
}

// WithServer 整体替换服务器配置，零值字段保留默认
func WithServer(server ServerConfig) Option {
	return func(c *Config) {
		if server.Addr != "" {
			c.Server.Addr = server.Addr
		}
		if server.ReadTimeout > 0 {
			c.Server.ReadTimeout = server.ReadTimeout
		}
		if server.WriteTimeout > 0 {
			c.Server.WriteTimeout = server.WriteTimeout
		}
		if server.IdleTimeout > 0 {
			c.Server.IdleTimeout = server.IdleTimeout
		}
		if server.MaxHeaderBytes > 0 {
			c.Server.MaxHeaderBytes = server.MaxHeaderBytes
		}
	}
}

// WithReadTimeout 设置读取超时
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Server.ReadTimeout = timeout
	}
}

// WithWriteTimeout 设置写入超时
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = timeout
	}
}

// WithShutdownTimeout 设置关机超时时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Shutdown.Timeout = timeout
	}
}

// WithBeforeShutdown 设置关机前回调
func WithBeforeShutdown(fn func()) Option {
	return func(c *Config) {
		c.Shutdown.BeforeShutdown = fn
	}
}

// WithAfterShutdown 设置关机后回调
func WithAfterShutdown(fn func()) Option {
	return func(c *Config) {
		c.Shutdown.AfterShutdown = fn
	}
}

// WithTrustedProxies 设置信任的代理
func WithTrustedProxies(proxies ...string) Option {
	return func(c *Config) {
		c.TrustedProxies = proxies
	}
}

// WithMaxMultipartMemory 设置最大 multipart 内存
func WithMaxMultipartMemory(size int64) Option {
	return func(c *Config) {
		c.MaxMultipartMemory = size
	}
}

// WithLogger 设置框架日志
func WithLogger(log logger.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithBanner 是否打印启动 banner
func WithBanner(enable bool) Option {
	return func(c *Config) {
		c.Banner = enable
	}
}
