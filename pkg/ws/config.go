package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tokmz/uskup/pkg/logger"
)

// Config 实时中心配置
type Config struct {
	// 连接配置
	MaxConnections   int           `mapstructure:"max_connections"`    // 最大连接数
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`  // 握手超时时间
	MaxMessageSize   int64         `mapstructure:"max_message_size"`   // 最大消息大小
	RequireAuth      bool          `mapstructure:"require_auth"`       // 要求握手携带已验证身份
	MaxInvalidFrames int           `mapstructure:"max_invalid_frames"` // 连续无效帧上限

	// 限流配置
	RateLimit  int           `mapstructure:"rate_limit"`  // 窗口内允许的事件数
	RateWindow time.Duration `mapstructure:"rate_window"` // 滑动窗口长度

	// 空闲回收
	IdleTimeout         time.Duration `mapstructure:"idle_timeout"`          // 无活动超时
	ReapInterval        time.Duration `mapstructure:"reap_interval"`         // 回收周期
	MemoryCheckInterval time.Duration `mapstructure:"memory_check_interval"` // 内存检查周期
	MemoryThreshold     uint64        `mapstructure:"memory_threshold"`      // 内存告警阈值（字节）

	// 心跳配置
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"` // ping 间隔
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout"`  // pong 超时
	WriteWait         time.Duration `mapstructure:"write_wait"`         // 单次写超时

	// 消息配置
	SendQueueSize int `mapstructure:"send_queue_size"` // 每个连接的发送队列
	MaxChatLength int `mapstructure:"max_chat_length"` // 聊天消息最大字符数

	// Upgrader 配置
	Upgrader UpgraderConfig `mapstructure:"upgrader"`

	// 运行时依赖
	Clock   Clock         `mapstructure:"-"`
	Logger  logger.Logger `mapstructure:"-"`
	Metrics Metrics       `mapstructure:"-"`
	// MemoryUsage 返回当前堆内存占用，默认读取 runtime.MemStats
	MemoryUsage func() uint64 `mapstructure:"-"`
}

// UpgraderConfig Upgrader 配置
type UpgraderConfig struct {
	ReadBufferSize    int                      `mapstructure:"read_buffer_size"`   // 读缓冲区大小
	WriteBufferSize   int                      `mapstructure:"write_buffer_size"`  // 写缓冲区大小
	EnableCompression bool                     `mapstructure:"enable_compression"` // 是否启用压缩
	AllowedOrigins    []string                 `mapstructure:"allowed_origins"`    // 允许的 Origin 白名单，"*" 表示全部
	CheckOrigin       func(*http.Request) bool `mapstructure:"-"`                  // Origin 检查函数
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxConnections:      100,
		HandshakeTimeout:    10 * time.Second,
		MaxMessageSize:      512 * 1024, // 512KB
		MaxInvalidFrames:    10,
		RateLimit:           50,
		RateWindow:          time.Minute,
		IdleTimeout:         10 * time.Minute,
		ReapInterval:        2 * time.Minute,
		MemoryCheckInterval: 30 * time.Second,
		MemoryThreshold:     100 * 1024 * 1024, // 100MB
		HeartbeatInterval:   30 * time.Second,
		HeartbeatTimeout:    90 * time.Second,
		WriteWait:           10 * time.Second,
		SendQueueSize:       256,
		MaxChatLength:       1000,
		Upgrader: UpgraderConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.MaxConnections <= 0 {
		return fmt.Errorf("MaxConnections must be positive, got %d", c.MaxConnections)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("HandshakeTimeout must be positive, got %v", c.HandshakeTimeout)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("MaxMessageSize must be positive, got %d", c.MaxMessageSize)
	}
	if c.MaxInvalidFrames <= 0 {
		return fmt.Errorf("MaxInvalidFrames must be positive, got %d", c.MaxInvalidFrames)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RateLimit must be positive, got %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RateWindow must be positive, got %v", c.RateWindow)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IdleTimeout must be positive, got %v", c.IdleTimeout)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("ReapInterval must be positive, got %v", c.ReapInterval)
	}
	if c.MemoryCheckInterval <= 0 {
		return fmt.Errorf("MemoryCheckInterval must be positive, got %v", c.MemoryCheckInterval)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("HeartbeatInterval must be positive, got %v", c.HeartbeatInterval)
	}
	if c.HeartbeatTimeout <= c.HeartbeatInterval {
		return fmt.Errorf("HeartbeatTimeout (%v) must be greater than HeartbeatInterval (%v)",
			c.HeartbeatTimeout, c.HeartbeatInterval)
	}
	if c.WriteWait <= 0 {
		return fmt.Errorf("WriteWait must be positive, got %v", c.WriteWait)
	}
	if c.SendQueueSize <= 0 {
		return fmt.Errorf("SendQueueSize must be positive, got %d", c.SendQueueSize)
	}
	if c.MaxChatLength <= 0 {
		return fmt.Errorf("MaxChatLength must be positive, got %d", c.MaxChatLength)
	}
	if c.Upgrader.ReadBufferSize <= 0 {
		return fmt.Errorf("Upgrader.ReadBufferSize must be positive, got %d", c.Upgrader.ReadBufferSize)
	}
	if c.Upgrader.WriteBufferSize <= 0 {
		return fmt.Errorf("Upgrader.WriteBufferSize must be positive, got %d", c.Upgrader.WriteBufferSize)
	}
	return nil
}

// Option 配置选项
type Option func(*Config)

// WithConfig 以 cfg 为基础，运行时依赖保持不变
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		clock, log, metrics, mem := c.Clock, c.Logger, c.Metrics, c.MemoryUsage
		*c = cfg
		if c.Clock == nil {
			c.Clock = clock
		}
		if c.Logger == nil {
			c.Logger = log
		}
		if c.Metrics == nil {
			c.Metrics = metrics
		}
		if c.MemoryUsage == nil {
			c.MemoryUsage = mem
		}
	}
}

// WithMaxConnections 设置最大连接数
func WithMaxConnections(max int) Option {
	return func(c *Config) {
		c.MaxConnections = max
	}
}

// WithRateLimit 设置限流窗口
func WithRateLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.RateLimit = limit
		c.RateWindow = window
	}
}

// WithIdleTimeout 设置空闲超时与回收周期
func WithIdleTimeout(timeout, interval time.Duration) Option {
	return func(c *Config) {
		c.IdleTimeout = timeout
		c.ReapInterval = interval
	}
}

// WithMemoryThreshold 设置内存告警阈值
func WithMemoryThreshold(bytes uint64) Option {
	return func(c *Config) {
		c.MemoryThreshold = bytes
	}
}

// WithHeartbeat 设置心跳间隔与超时
func WithHeartbeat(interval, timeout time.Duration) Option {
	return func(c *Config) {
		c.HeartbeatInterval = interval
		c.HeartbeatTimeout = timeout
	}
}

// WithSendQueueSize 设置发送队列大小
func WithSendQueueSize(size int) Option {
	return func(c *Config) {
		c.SendQueueSize = size
	}
}

// WithRequireAuth 要求握手携带身份
func WithRequireAuth(require bool) Option {
	return func(c *Config) {
		c.RequireAuth = require
	}
}

// WithCheckOrigin 设置 Origin 检查函数
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *Config) {
		c.Upgrader.CheckOrigin = fn
	}
}

// WithCheckOriginWhitelist 设置 Origin 白名单
func WithCheckOriginWhitelist(allowedOrigins []string) Option {
	return func(c *Config) {
		c.Upgrader.AllowedOrigins = allowedOrigins
		c.Upgrader.CheckOrigin = createWhitelistChecker(allowedOrigins)
	}
}

// WithAllowAllOrigins 允许所有来源（仅用于开发环境）
func WithAllowAllOrigins() Option {
	return func(c *Config) {
		c.Upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

// WithClock 设置时钟
func WithClock(clock Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithLogger 设置日志
func WithLogger(log logger.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithMetrics 设置监控
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithMemoryUsage 设置内存采样函数
func WithMemoryUsage(fn func() uint64) Option {
	return func(c *Config) {
		c.MemoryUsage = fn
	}
}

// defaultCheckOrigin 默认 Origin 检查（同源策略）
func defaultCheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// 非浏览器客户端需要显式放行
		return false
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// createWhitelistChecker 创建白名单检查器
func createWhitelistChecker(allowedOrigins []string) func(*http.Request) bool {
	whitelist := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		whitelist[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return false
		}
		return whitelist[origin]
	}
}

// Upgrader WebSocket 升级器
type Upgrader struct {
	upgrader websocket.Upgrader
}

// NewUpgrader 创建升级器
func NewUpgrader(config UpgraderConfig, handshakeTimeout time.Duration) *Upgrader {
	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		if len(config.AllowedOrigins) > 0 {
			checkOrigin = createWhitelistChecker(config.AllowedOrigins)
		} else {
			checkOrigin = defaultCheckOrigin
		}
	}

	return &Upgrader{
		upgrader: websocket.Upgrader{
			HandshakeTimeout:  handshakeTimeout,
			ReadBufferSize:    config.ReadBufferSize,
			WriteBufferSize:   config.WriteBufferSize,
			CheckOrigin:       checkOrigin,
			EnableCompression: config.EnableCompression,
		},
	}
}

// Upgrade 升级 HTTP 连接为 WebSocket
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return u.upgrader.Upgrade(w, r, nil)
}
