package ws

import (
	"go.uber.org/zap"
)

// Reap 回收空闲连接，返回被回收的数量
func (h *Hub) Reap() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reapLocked()
}

// reapLocked 调用方必须持有 h.mu
func (h *Hub) reapLocked() int {
	if h.closed {
		return 0
	}
	now := h.clock.Now()
	ids := h.registry.Idle(now, h.config.IdleTimeout)
	for _, id := range ids {
		c, ok := h.registry.Client(id)
		if !ok {
			continue
		}
		h.evictLocked(c)
	}
	if len(ids) > 0 {
		h.log.Info("ws cleaned up inactive connections",
			zap.Int("evicted", len(ids)),
			zap.Int("connections", h.registry.Len()),
		)
	}
	return len(ids)
}

// evictLocked 通知被回收的连接后将其移除并关闭
func (h *Hub) evictLocked(c *Client) {
	if rec, ok := h.registry.Get(c.ID); ok {
		h.sendTo(c, EventUserTimeout, UserTimeoutPayload{
			User:      rec,
			Reason:    "inactive",
			Timestamp: h.clock.Now(),
		})
	}
	h.evictions++
	h.metrics.IncrementEvictions()
	h.removeLocked(c, ReasonIdleTimeout)
	c.Close()
}

// CheckMemory 采样堆内存，超过阈值时告警并立即回收一次
func (h *Hub) CheckMemory() uint64 {
	usage := h.config.MemoryUsage()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.heapInUse = usage

	fields := []zap.Field{
		zap.Int("connections", h.registry.Len()),
		zap.Int("max_connections", h.config.MaxConnections),
		zap.Float64("memory_mb", float64(usage)/1024/1024),
		zap.Uint64("total_messages", h.totalMessages),
		zap.Duration("uptime", h.clock.Now().Sub(h.startedAt)),
	}
	if usage <= h.config.MemoryThreshold {
		h.log.Debug("ws stats", fields...)
		return usage
	}

	h.log.Warn("ws high memory usage detected", fields...)
	h.reapLocked()
	return usage
}
