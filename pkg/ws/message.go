package ws

import (
	"encoding/json"
	"time"
)

// Message 入站帧
type Message struct {
	// Event 事件名称（如 "chat:message"）
	Event string `json:"event"`

	// Data 事件数据（JSON）
	Data json.RawMessage `json:"data,omitempty"`

	// Timestamp 客户端时间，仅作记录
	Timestamp string `json:"timestamp,omitempty"`
}

// Bind 解析事件数据，空数据视为空对象
func (m *Message) Bind(v any) error {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Envelope 出站帧
type Envelope struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// encode 编码出站帧
func encode(event string, data any, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data, Timestamp: now.UTC()})
}

// parseMessage 解析入站帧
func parseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event == "" {
		return nil, invalid("Missing event name")
	}
	return &msg, nil
}
