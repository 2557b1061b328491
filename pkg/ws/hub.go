package ws

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/uskup/pkg/logger"
)

// Hub 实时在线状态与通知中心
type Hub struct {
	// 核心组件
	router   *Router
	upgrader *Upgrader

	// 配置
	config  *Config
	clock   Clock
	log     logger.Logger
	metrics Metrics

	// mu 覆盖注册表、限流器与以下统计字段
	mu                  sync.Mutex
	registry            *Registry
	limiter             *RateLimiter
	totalConnections    uint64
	totalDisconnections uint64
	totalMessages       uint64
	evictions           uint64
	heapInUse           uint64
	closed              bool

	dropped   atomic.Uint64
	startedAt time.Time

	// 生命周期
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Stats 中心运行统计
type Stats struct {
	TotalConnections    uint64 `json:"totalConnections"`
	TotalDisconnections uint64 `json:"totalDisconnections"`
	CurrentConnections  int    `json:"currentConnections"`
	IdentifiedUsers     int    `json:"identifiedUsers"`
	MaxConnections      int    `json:"maxConnections"`
	TotalMessages       uint64 `json:"totalMessages"`
	DroppedMessages     uint64 `json:"droppedMessages"`
	Evictions           uint64 `json:"evictions"`
	MemoryUsage         uint64 `json:"memoryUsage"`
	Uptime              int64  `json:"uptime"` // 秒
}

// NewHub 创建中心
func NewHub(opts ...Option) (*Hub, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Clock == nil {
		config.Clock = SystemClock()
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	if config.MemoryUsage == nil {
		config.MemoryUsage = readHeap
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		router:    NewRouter(),
		upgrader:  NewUpgrader(config.Upgrader, config.HandshakeTimeout),
		config:    config,
		clock:     config.Clock,
		log:       config.Logger.Named("ws"),
		metrics:   config.Metrics,
		registry:  NewRegistry(config.MaxConnections),
		limiter:   NewRateLimiter(config.RateLimit, config.RateWindow),
		startedAt: config.Clock.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	h.heapInUse = config.MemoryUsage()

	if err := h.registerHandlers(); err != nil {
		cancel()
		return nil, err
	}
	h.router.Freeze()

	return h, nil
}

// Run 运行空闲回收与内存检查，直到 ctx 取消或中心关闭
func (h *Hub) Run(ctx context.Context) {
	reap := time.NewTicker(h.config.ReapInterval)
	memory := time.NewTicker(h.config.MemoryCheckInterval)
	defer func() {
		reap.Stop()
		memory.Stop()
	}()

	h.log.Info("ws hub started",
		zap.Int("max_connections", h.config.MaxConnections),
		zap.Duration("reap_interval", h.config.ReapInterval),
		zap.Duration("idle_timeout", h.config.IdleTimeout),
		zap.Int("rate_limit", h.config.RateLimit),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		case <-reap.C:
			h.Reap()
			h.CheckMemory()
		case <-memory.C:
			h.CheckMemory()
		}
	}
}

// Shutdown 移除所有连接并等待读写协程退出
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := h.registry.Clients()
	for _, c := range clients {
		h.removeLocked(c, ReasonServerShutdown)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("ws hub stopped", zap.Int("closed_connections", len(clients)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleUpgrade 处理 WebSocket 升级，identity 为握手阶段验证过的身份
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request, identity *Identity) error {
	if identity == nil && h.config.RequireAuth {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return ErrUnauthenticated
	}

	conn, err := h.upgrader.Upgrade(w, r)
	if err != nil {
		return err
	}

	client := newClient(h, conn, identity)
	if err := h.connect(client); err != nil {
		// 写协程会把 error:connection 写出后关闭连接
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			client.writePump()
		}()
		return err
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		client.run()
		h.disconnect(client, ReasonClientDisconnect)
	}()

	return nil
}

// connect 接纳连接并发送欢迎信息；被拒绝时排队 error:connection 并关闭客户端
func (h *Hub) connect(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		c.Close()
		return ErrHubClosed
	}

	now := h.clock.Now()
	if err := h.registry.Admit(c.ID, c, now); err != nil {
		h.metrics.IncrementRejectedConnections()
		h.log.Warn("ws connection rejected",
			zap.String("conn_id", c.ID),
			zap.String("remote_addr", c.remoteAddr),
			zap.Int("connections", h.registry.Len()),
			zap.Error(err),
		)
		h.sendTo(c, EventErrorConnection, ErrorPayload{
			Message: "Server at maximum capacity",
			Code:    CodeConnectionLimit,
		})
		c.Close()
		return err
	}

	h.totalConnections++
	h.metrics.IncrementConnections()
	h.log.Info("ws client connected",
		zap.String("conn_id", c.ID),
		zap.String("remote_addr", c.remoteAddr),
		zap.Int("connections", h.registry.Len()),
		zap.Int("max_connections", h.config.MaxConnections),
	)

	h.sendTo(c, EventConnectionStats, ConnectionStatsPayload{
		TotalConnections:   h.totalConnections,
		CurrentConnections: h.registry.Len(),
		Uptime:             int64(now.Sub(h.startedAt) / time.Second),
		MemoryUsage:        h.heapInUse,
	})
	h.sendTo(c, EventConnectionEstablished, EstablishedPayload{
		Message:   welcomeMessage,
		SocketID:  c.ID,
		Timestamp: now,
		Features:  features,
		Limits: Limits{
			MaxConnections:       h.config.MaxConnections,
			MaxMessagesPerMinute: h.config.RateLimit,
			InactiveTimeout:      h.config.IdleTimeout.Minutes(),
		},
	})
	return nil
}

// dispatch 处理一帧入站数据
func (h *Hub) dispatch(c *Client, data []byte) {
	msg, err := parseMessage(data)
	if err != nil {
		h.metrics.IncrementInvalidMessages()
		if n := c.invalidFrames.Add(1); int(n) > h.config.MaxInvalidFrames {
			h.log.Warn("ws too many invalid frames", zap.String("conn_id", c.ID), zap.Int32("count", n))
			c.Close()
			return
		}
		var ee *EventError
		if !errors.As(err, &ee) {
			ee = invalid("Invalid message format")
		}
		h.sendTo(c, ee.Event, ErrorPayload{Message: ee.Message, Code: ee.Code})
		return
	}
	c.invalidFrames.Store(0)

	h.mu.Lock()
	defer h.mu.Unlock()

	// 已被回收或关闭的连接不再处理
	if c.IsClosed() {
		return
	}
	if _, ok := h.registry.Client(c.ID); !ok {
		return
	}

	h.metrics.IncrementMessageCount(msg.Event)
	if err := h.router.Route(c, msg); err != nil {
		h.replyError(c, msg.Event, err)
	}
}

// replyError 把处理错误转换为只发给发送方的 error:* 事件
func (h *Hub) replyError(c *Client, event string, err error) {
	var ee *EventError
	switch {
	case errors.As(err, &ee):
	case errors.Is(err, ErrHandlerNotFound):
		ee = invalid("Unknown event: " + event)
	default:
		h.log.Error("ws handler failed", zap.String("conn_id", c.ID), zap.String("event", event), zap.Error(err))
		ee = invalid("Unable to process " + event)
	}

	if ee.Event == EventErrorRateLimit {
		h.metrics.IncrementRateLimited(event)
	} else {
		h.metrics.IncrementValidationErrors(event)
	}
	h.sendTo(c, ee.Event, ErrorPayload{Message: ee.Message, Code: ee.Code})
}

// disconnect 连接断开
func (h *Hub) disconnect(c *Client, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, reason)
}

// removeLocked 移除连接并通知其他在线用户，重复调用无副作用
func (h *Hub) removeLocked(c *Client, reason string) {
	rec, existed := h.registry.Remove(c.ID)
	if !existed {
		return
	}
	h.limiter.Purge(c.ID)
	h.totalDisconnections++
	h.metrics.DecrementConnections()

	fields := []zap.Field{
		zap.String("conn_id", c.ID),
		zap.String("reason", reason),
		zap.Int("connections", h.registry.Len()),
	}
	if rec == nil {
		h.log.Info("ws client disconnected", fields...)
		return
	}
	h.log.Info("ws client disconnected", append(fields, zap.String("user_id", rec.UserID))...)

	h.broadcastLocked(EventUserLeft, UserLeftPayload{
		User:      *rec,
		Reason:    reason,
		Timestamp: h.clock.Now(),
	}, All)
	h.broadcastLocked(EventUsersList, h.registry.List(), All)
}

// Publish 推送服务端事件，excludeUserID 为空时发给所有已识别连接
func (h *Hub) Publish(event string, data any, excludeUserID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.broadcastLocked(event, data, ExceptUser(excludeUserID))
}

// List 当前在线记录
func (h *Hub) List() []PresenceRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.List()
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len()
}

// Stats 运行统计
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TotalConnections:    h.totalConnections,
		TotalDisconnections: h.totalDisconnections,
		CurrentConnections:  h.registry.Len(),
		IdentifiedUsers:     h.registry.Identified(),
		MaxConnections:      h.config.MaxConnections,
		TotalMessages:       h.totalMessages,
		DroppedMessages:     h.dropped.Load(),
		Evictions:           h.evictions,
		MemoryUsage:         h.heapInUse,
		Uptime:              int64(h.clock.Now().Sub(h.startedAt) / time.Second),
	}
}

// readHeap 读取当前堆内存占用
func readHeap() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
