// Package notify 把 REST 写操作推送为 data:changed 事件
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tokmz/uskup/pkg/ws"
)

// 写操作类型
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event 一次记录变更
type Event struct {
	Type     string
	Action   string
	RecordID string
	Data     any
	SenderID string
}

// Publisher 变更发布
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Broadcaster 本地推送目标，*ws.Hub 满足该接口
type Broadcaster interface {
	Publish(event string, data any, excludeUserID string) int
}

// payload 转换为 data:changed 载荷
func (e Event) payload(now time.Time) (ws.DataChangedPayload, error) {
	p := ws.DataChangedPayload{
		Type:      e.Type,
		Action:    e.Action,
		RecordID:  e.RecordID,
		SenderID:  e.SenderID,
		Timestamp: now,
	}
	if e.Data != nil {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			return p, err
		}
		p.Data = raw
	}
	return p, nil
}

// LocalPublisher 直接推送到本进程的 Hub
type LocalPublisher struct {
	hub Broadcaster
	now func() time.Time
}

// NewLocal 创建本地发布器
func NewLocal(hub Broadcaster) *LocalPublisher {
	return &LocalPublisher{hub: hub, now: time.Now}
}

// Publish 推送给所有已识别连接
func (p *LocalPublisher) Publish(_ context.Context, e Event) error {
	payload, err := e.payload(p.now())
	if err != nil {
		return err
	}
	p.hub.Publish(ws.EventDataChanged, payload, "")
	return nil
}

// Nop 不推送
type Nop struct{}

// Publish 无操作
func (Nop) Publish(context.Context, Event) error { return nil }
