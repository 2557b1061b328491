package ws

import (
	"time"
)

// RateLimiter 按 (连接, 事件) 计数的滑动窗口限流器
//
// 被拒绝的请求不计入窗口；与 Registry 一样由 Hub 串行化访问。
type RateLimiter struct {
	limit  int
	window time.Duration
	hits   map[string]map[string][]time.Time // connID -> event -> 时间戳
}

// NewRateLimiter 创建限流器
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]map[string][]time.Time),
	}
}

// Allow 判断 now 时刻的事件是否放行
func (l *RateLimiter) Allow(connID, event string, now time.Time) bool {
	events, ok := l.hits[connID]
	if !ok {
		events = make(map[string][]time.Time)
		l.hits[connID] = events
	}

	// 先剔除窗口外的时间戳再计数
	cut := now.Add(-l.window)
	stamps := events[event]
	dst := stamps[:0]
	for _, t := range stamps {
		if t.After(cut) {
			dst = append(dst, t)
		}
	}

	if len(dst) >= l.limit {
		events[event] = dst
		return false
	}
	events[event] = append(dst, now)
	return true
}

// Remaining 窗口内剩余可用次数
func (l *RateLimiter) Remaining(connID, event string, now time.Time) int {
	cut := now.Add(-l.window)
	n := 0
	for _, t := range l.hits[connID][event] {
		if t.After(cut) {
			n++
		}
	}
	return max(l.limit-n, 0)
}

// Purge 清除连接的全部窗口
func (l *RateLimiter) Purge(connID string) {
	delete(l.hits, connID)
}

// Len 被跟踪的连接数
func (l *RateLimiter) Len() int {
	return len(l.hits)
}
