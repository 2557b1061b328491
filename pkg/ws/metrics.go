package ws

// Metrics 监控接口
type Metrics interface {
	// 连接指标
	IncrementConnections()
	DecrementConnections()
	IncrementRejectedConnections()
	IncrementEvictions()

	// 消息指标
	IncrementMessageCount(event string)
	IncrementRateLimited(event string)
	IncrementValidationErrors(event string)
	IncrementDroppedMessages()

	// 错误指标
	IncrementReadErrors()
	IncrementWriteErrors()
	IncrementInvalidMessages()
}

// NoopMetrics 空实现（默认）
type NoopMetrics struct{}

func (m *NoopMetrics) IncrementConnections()                  {}
func (m *NoopMetrics) DecrementConnections()                  {}
func (m *NoopMetrics) IncrementRejectedConnections()          {}
func (m *NoopMetrics) IncrementEvictions()                    {}
func (m *NoopMetrics) IncrementMessageCount(event string)     {}
func (m *NoopMetrics) IncrementRateLimited(event string)      {}
func (m *NoopMetrics) IncrementValidationErrors(event string) {}
func (m *NoopMetrics) IncrementDroppedMessages()              {}
func (m *NoopMetrics) IncrementReadErrors()                   {}
func (m *NoopMetrics) IncrementWriteErrors()                  {}
func (m *NoopMetrics) IncrementInvalidMessages()              {}
