package ws

import (
	"errors"
	"slices"

	"go.uber.org/zap"
)

// Predicate 在线记录过滤条件
type Predicate func(PresenceRecord) bool

// All 所有已识别连接
func All(PresenceRecord) bool { return true }

// Except 排除指定连接
func Except(connID string) Predicate {
	return func(rec PresenceRecord) bool {
		return rec.ConnectionID != connID
	}
}

// ExceptUser 排除指定用户的全部连接
func ExceptUser(userID string) Predicate {
	return func(rec PresenceRecord) bool {
		return userID == "" || rec.UserID != userID
	}
}

// ToUsers 只投递给指定用户（含同一用户的多个连接）
func ToUsers(userIDs ...string) Predicate {
	return func(rec PresenceRecord) bool {
		return slices.Contains(userIDs, rec.UserID)
	}
}

// broadcastLocked 向匹配的已识别连接投递事件，返回成功入队的数量
//
// 调用方必须持有 h.mu。
func (h *Hub) broadcastLocked(event string, data any, match Predicate) int {
	frame, err := encode(event, data, h.clock.Now())
	if err != nil {
		h.log.Error("ws encode failed", zap.String("event", event), zap.Error(err))
		return 0
	}
	if match == nil {
		match = All
	}

	delivered := 0
	h.registry.each(func(rec PresenceRecord, c *Client) {
		if !match(rec) {
			return
		}
		if h.deliver(c, event, frame) {
			delivered++
		}
	})
	return delivered
}

// sendTo 向单个连接投递事件
func (h *Hub) sendTo(c *Client, event string, data any) bool {
	frame, err := encode(event, data, h.clock.Now())
	if err != nil {
		h.log.Error("ws encode failed", zap.String("event", event), zap.Error(err))
		return false
	}
	return h.deliver(c, event, frame)
}

// deliver 投递失败只记录，不影响触发方
func (h *Hub) deliver(c *Client, event string, frame []byte) bool {
	err := c.enqueue(frame)
	if err == nil {
		return true
	}
	h.dropped.Add(1)
	h.metrics.IncrementDroppedMessages()
	level := h.log.Debug
	if errors.Is(err, ErrQueueFull) {
		level = h.log.Warn
	}
	level("ws delivery skipped",
		zap.String("conn_id", c.ID),
		zap.String("event", event),
		zap.Error(err),
	)
	return false
}
