package ws

import (
	"encoding/json"
	"slices"
	"time"
)

// 入站事件
const (
	EventUserIdentify     = "user:identify"
	EventNotificationSend = "notification:send"
	EventDataUpdate       = "data:update"
	EventDashboardRefresh = "dashboard:refresh"
	EventChatMessage      = "chat:message"
	EventHeartbeat        = "heartbeat"
)

// 出站事件
const (
	EventConnectionEstablished = "connection:established"
	EventConnectionStats       = "connection:stats"
	EventUserJoined            = "user:joined"
	EventUserLeft              = "user:left"
	EventUserTimeout           = "user:timeout"
	EventUsersList             = "users:list"
	EventNotificationReceive   = "notification:receive"
	EventDataChanged           = "data:changed"
	EventDashboardShouldReload = "dashboard:should-refresh"
	EventHeartbeatAck          = "heartbeat:ack"
	EventErrorConnection       = "error:connection"
	EventErrorRateLimit        = "error:rate-limit"
	EventErrorValidation       = "error:validation"
)

// 离开原因
const (
	ReasonClientDisconnect = "client-disconnect"
	ReasonIdleTimeout      = "idle-timeout"
	ReasonServerShutdown   = "server-shutdown"
)

// 允许的枚举值
var (
	NotificationTypes = []string{"info", "success", "warning", "error"}
	RecordTypes       = []string{"agenda", "tasks", "notulensi", "surat", "decisions"}
	RecordActions     = []string{"create", "update", "delete"}
)

// welcomeMessage 连接建立时的欢迎语
const welcomeMessage = "Welcome to Dashboard Uskup Surabaya Real-time System!"

var features = []string{
	"Real-time notifications",
	"Live data updates",
	"User presence tracking",
	"Dashboard refresh sync",
	"Memory monitoring",
	"Rate limiting",
}

// 限流提示
var rateLimitMessages = map[string]string{
	EventUserIdentify:     "Too many identification requests",
	EventNotificationSend: "Too many notifications",
	EventDataUpdate:       "Too many data updates",
	EventDashboardRefresh: "Too many refresh requests",
	EventChatMessage:      "Too many messages",
	EventHeartbeat:        "Too many heartbeats",
}

// Identity 握手阶段验证过的身份
type Identity struct {
	UserID string
	Name   string
	Role   string
}

// IdentifyRequest user:identify
type IdentifyRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NotificationRequest notification:send
type NotificationRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	TargetUsers []string `json:"targetUsers,omitempty"`
}

// Validate 校验通知
func (r *NotificationRequest) Validate() error {
	if !slices.Contains(NotificationTypes, r.Type) {
		return invalid("Invalid notification type")
	}
	if r.Title == "" || r.Message == "" {
		return invalid("Notification title and message are required")
	}
	return nil
}

// DataUpdateRequest data:update
type DataUpdateRequest struct {
	Type     string          `json:"type"`
	Action   string          `json:"action"`
	RecordID string          `json:"recordId"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Validate 校验数据变更
func (r *DataUpdateRequest) Validate() error {
	if !slices.Contains(RecordTypes, r.Type) || !slices.Contains(RecordActions, r.Action) {
		return invalid("Invalid data update parameters")
	}
	if r.Action != "create" && r.RecordID == "" {
		return invalid("Invalid data update parameters")
	}
	return nil
}

// RefreshRequest dashboard:refresh
type RefreshRequest struct {
	UserID string `json:"userId"`
}

// ChatRequest chat:message
type ChatRequest struct {
	Text       string `json:"text"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	TargetID   string `json:"targetId,omitempty"`
}

// Limits 连接限制说明
type Limits struct {
	MaxConnections       int     `json:"maxConnections"`
	MaxMessagesPerMinute int     `json:"maxMessagesPerMinute"`
	InactiveTimeout      float64 `json:"inactiveTimeout"` // 分钟
}

// EstablishedPayload connection:established
type EstablishedPayload struct {
	Message   string    `json:"message"`
	SocketID  string    `json:"socketId"`
	Timestamp time.Time `json:"timestamp"`
	Features  []string  `json:"features"`
	Limits    Limits    `json:"limits"`
}

// ConnectionStatsPayload connection:stats
type ConnectionStatsPayload struct {
	TotalConnections   uint64 `json:"totalConnections"`
	CurrentConnections int    `json:"currentConnections"`
	Uptime             int64  `json:"uptime"` // 秒
	MemoryUsage        uint64 `json:"memoryUsage"`
}

// UserJoinedPayload user:joined
type UserJoinedPayload struct {
	User            PresenceRecord `json:"user"`
	Timestamp       time.Time      `json:"timestamp"`
	ConnectionCount int            `json:"connectionCount"`
}

// UserLeftPayload user:left
type UserLeftPayload struct {
	User      PresenceRecord `json:"user"`
	Reason    string         `json:"reason"`
	Timestamp time.Time      `json:"timestamp"`
}

// UserTimeoutPayload user:timeout
type UserTimeoutPayload struct {
	User      PresenceRecord `json:"user"`
	Reason    string         `json:"reason"`
	Timestamp time.Time      `json:"timestamp"`
}

// NotificationPayload notification:receive
type NotificationPayload struct {
	NotificationRequest
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}

// DataChangedPayload data:changed
type DataChangedPayload struct {
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	RecordID  string          `json:"recordId"`
	Data      json.RawMessage `json:"data,omitempty"`
	SenderID  string          `json:"senderId"`
	Timestamp time.Time       `json:"timestamp"`
}

// RefreshPayload dashboard:should-refresh
type RefreshPayload struct {
	RequestedBy   string    `json:"requestedBy"`
	RequesterName string    `json:"requesterName"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChatPayload chat:message
type ChatPayload struct {
	ChatRequest
	Timestamp time.Time `json:"timestamp"`
}

// HeartbeatAckPayload heartbeat:ack
type HeartbeatAckPayload struct {
	Timestamp       time.Time `json:"timestamp"`
	MemoryUsage     uint64    `json:"memoryUsage"`
	ConnectionCount int       `json:"connectionCount"`
}

// ErrorPayload error:*
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
