package ws

import "errors"

// 错误定义
var (
	// 连接相关错误
	ErrCapacityExceeded = errors.New("ws: server at maximum capacity")
	ErrClientIDExists   = errors.New("ws: client id already exists")
	ErrClientNotFound   = errors.New("ws: client not found")
	ErrConnectionClosed = errors.New("ws: connection closed")
	ErrUnauthenticated  = errors.New("ws: unauthenticated")
	ErrHubClosed        = errors.New("ws: hub closed")

	// 投递相关错误
	ErrDeliverySkipped = errors.New("ws: delivery skipped")
	ErrQueueFull       = errors.New("ws: send queue full")

	// 路由相关错误
	ErrHandlerNotFound = errors.New("ws: handler not found")
	ErrHandlerExists   = errors.New("ws: handler already exists")
	ErrRouterFrozen    = errors.New("ws: router is frozen")
)

// 错误码，随 error:* 事件下发给客户端
const (
	CodeConnectionLimit = "CONNECTION_LIMIT_EXCEEDED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeValidation      = "VALIDATION_ERROR"
)

// EventError 事件级错误，只回送给触发它的连接
type EventError struct {
	Event   string // 出站事件名，error:rate-limit 或 error:validation
	Code    string
	Message string
}

func (e *EventError) Error() string {
	return "ws: " + e.Event + ": " + e.Message
}

// rateLimited 创建限流错误
func rateLimited(message string) *EventError {
	return &EventError{Event: EventErrorRateLimit, Code: CodeRateLimited, Message: message}
}

// invalid 创建校验错误
func invalid(message string) *EventError {
	return &EventError{Event: EventErrorValidation, Code: CodeValidation, Message: message}
}
