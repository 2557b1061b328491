package ws

import (
	"time"
)

// PresenceRecord 一个已识别连接的在线记录
type PresenceRecord struct {
	ConnectionID string    `json:"socketId"`
	UserID       string    `json:"id"`
	DisplayName  string    `json:"name"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joinTime"`
	LastSeen     time.Time `json:"lastSeen"`
	LastActivity time.Time `json:"lastActivity"`
	MessageCount int       `json:"messageCount"`
}

// entry 注册表内部的连接条目
type entry struct {
	client       *Client
	admittedAt   time.Time
	lastActivity time.Time
	record       *PresenceRecord
}

// Registry 连接注册表
//
// Registry 不加锁，调用方（Hub）负责串行化访问。
type Registry struct {
	max     int
	entries map[string]*entry
	order   []string // 已识别连接，按首次识别顺序
}

// NewRegistry 创建注册表
func NewRegistry(maxConnections int) *Registry {
	return &Registry{
		max:     maxConnections,
		entries: make(map[string]*entry, maxConnections),
	}
}

// Admit 接纳连接，达到上限时返回 ErrCapacityExceeded
func (r *Registry) Admit(id string, c *Client, now time.Time) error {
	if _, exists := r.entries[id]; exists {
		return ErrClientIDExists
	}
	if len(r.entries) >= r.max {
		return ErrCapacityExceeded
	}
	r.entries[id] = &entry{client: c, admittedAt: now, lastActivity: now}
	return nil
}

// Identify 创建或覆盖连接的在线记录
func (r *Registry) Identify(id, userID, name, role string, now time.Time) (PresenceRecord, error) {
	e, ok := r.entries[id]
	if !ok {
		return PresenceRecord{}, ErrClientNotFound
	}
	if e.record == nil {
		r.order = append(r.order, id)
	}
	e.record = &PresenceRecord{
		ConnectionID: id,
		UserID:       userID,
		DisplayName:  name,
		Role:         role,
		JoinedAt:     now,
		LastSeen:     now,
		LastActivity: now,
	}
	e.lastActivity = now
	return *e.record, nil
}

// Touch 刷新最后活动时间，未知连接直接忽略
func (r *Registry) Touch(id string, now time.Time) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.lastActivity = now
	if e.record != nil {
		e.record.LastActivity = now
		e.record.LastSeen = now
	}
}

// CountMessage 累加消息计数
func (r *Registry) CountMessage(id string) {
	if e, ok := r.entries[id]; ok && e.record != nil {
		e.record.MessageCount++
	}
}

// Remove 移除连接，返回被删除的在线记录（未识别时为 nil）
//
// 重复移除不会报错，existed 为 false。
func (r *Registry) Remove(id string) (rec *PresenceRecord, existed bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	delete(r.entries, id)
	if e.record != nil {
		for i, oid := range r.order {
			if oid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	return e.record, true
}

// Get 获取在线记录副本
func (r *Registry) Get(id string) (PresenceRecord, bool) {
	e, ok := r.entries[id]
	if !ok || e.record == nil {
		return PresenceRecord{}, false
	}
	return *e.record, true
}

// Client 获取连接对应的客户端
func (r *Registry) Client(id string) (*Client, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.client, true
}

// List 按插入顺序返回在线记录副本
func (r *Registry) List() []PresenceRecord {
	list := make([]PresenceRecord, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.entries[id].record)
	}
	return list
}

// Len 当前连接数（含未识别）
func (r *Registry) Len() int {
	return len(r.entries)
}

// Identified 已识别连接数
func (r *Registry) Identified() int {
	return len(r.order)
}

// Idle 返回最后活动早于 now-timeout 的连接 ID
func (r *Registry) Idle(now time.Time, timeout time.Duration) []string {
	var ids []string
	for id, e := range r.entries {
		if now.Sub(e.lastActivity) > timeout {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clients 返回所有连接
func (r *Registry) Clients() []*Client {
	clients := make([]*Client, 0, len(r.entries))
	for _, e := range r.entries {
		clients = append(clients, e.client)
	}
	return clients
}

// each 按插入顺序遍历已识别连接
func (r *Registry) each(fn func(rec PresenceRecord, c *Client)) {
	for _, id := range r.order {
		e := r.entries[id]
		fn(*e.record, e.client)
	}
}
