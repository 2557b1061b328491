package ws

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// registerHandlers 注册入站事件处理器
func (h *Hub) registerHandlers() error {
	h.router.Use(h.rateLimit)

	if err := Handle0[IdentifyRequest](h.router, EventUserIdentify, h.onIdentify); err != nil {
		return err
	}
	if err := Handle0[NotificationRequest](h.router, EventNotificationSend, identifiedOnly(h, h.onNotification)); err != nil {
		return err
	}
	if err := Handle0[DataUpdateRequest](h.router, EventDataUpdate, identifiedOnly(h, h.onDataUpdate)); err != nil {
		return err
	}
	if err := Handle0[RefreshRequest](h.router, EventDashboardRefresh, identifiedOnly(h, h.onRefresh)); err != nil {
		return err
	}
	if err := Handle0[ChatRequest](h.router, EventChatMessage, identifiedOnly(h, h.onChat)); err != nil {
		return err
	}
	return h.router.Register(EventHeartbeat, h.onHeartbeat)
}

// rateLimit 限流中间件，被拒绝的事件直接丢弃
func (h *Hub) rateLimit(c *Client, msg *Message, next NextFunc) error {
	if !h.limiter.Allow(c.ID, msg.Event, h.clock.Now()) {
		h.log.Debug("ws rate limited", zap.String("conn_id", c.ID), zap.String("event", msg.Event))
		text, ok := rateLimitMessages[msg.Event]
		if !ok {
			text = "Too many requests"
		}
		return rateLimited(text)
	}
	return next()
}

// identifiedOnly 要求连接已完成 user:identify
func identifiedOnly[Req any](h *Hub, fn func(*Client, PresenceRecord, *Req) error) HandlerFunc0[Req] {
	return func(c *Client, req *Req) error {
		rec, ok := h.registry.Get(c.ID)
		if !ok {
			return invalid("Connection is not identified")
		}
		return fn(c, rec, req)
	}
}

// accept 记录一次被接受的消息
func (h *Hub) accept(c *Client) {
	h.totalMessages++
	h.registry.CountMessage(c.ID)
	h.registry.Touch(c.ID, h.clock.Now())
}

// onIdentify user:identify
func (h *Hub) onIdentify(c *Client, req *IdentifyRequest) error {
	id, name, role := req.ID, req.Name, req.Role
	if c.identity != nil {
		id, name, role = c.identity.UserID, c.identity.Name, c.identity.Role
	}
	if id == "" {
		return invalid("Invalid identification data")
	}

	now := h.clock.Now()
	rec, err := h.registry.Identify(c.ID, id, name, role, now)
	if err != nil {
		return err
	}
	h.log.Info("ws user identified",
		zap.String("conn_id", c.ID),
		zap.String("user_id", rec.UserID),
		zap.String("role", rec.Role),
		zap.Bool("verified", c.identity != nil),
	)

	h.broadcastLocked(EventUserJoined, UserJoinedPayload{
		User:            rec,
		Timestamp:       now,
		ConnectionCount: h.registry.Identified(),
	}, All)
	h.broadcastLocked(EventUsersList, h.registry.List(), All)
	return nil
}

// onNotification notification:send
func (h *Hub) onNotification(c *Client, sender PresenceRecord, req *NotificationRequest) error {
	h.accept(c)

	var match Predicate = All
	if len(req.TargetUsers) > 0 {
		match = ToUsers(req.TargetUsers...)
	}
	h.broadcastLocked(EventNotificationReceive, NotificationPayload{
		NotificationRequest: *req,
		SenderID:            sender.UserID,
		Timestamp:           h.clock.Now(),
	}, match)
	return nil
}

// onDataUpdate data:update，不回送给发送方
func (h *Hub) onDataUpdate(c *Client, sender PresenceRecord, req *DataUpdateRequest) error {
	h.accept(c)

	h.broadcastLocked(EventDataChanged, DataChangedPayload{
		Type:      req.Type,
		Action:    req.Action,
		RecordID:  req.RecordID,
		Data:      req.Data,
		SenderID:  sender.UserID,
		Timestamp: h.clock.Now(),
	}, Except(c.ID))
	return nil
}

// onRefresh dashboard:refresh，不回送给发送方
func (h *Hub) onRefresh(c *Client, sender PresenceRecord, req *RefreshRequest) error {
	h.accept(c)

	requestedBy := req.UserID
	if requestedBy == "" || c.identity != nil {
		requestedBy = sender.UserID
	}
	name := sender.DisplayName
	if name == "" {
		name = "Unknown"
	}
	h.broadcastLocked(EventDashboardShouldReload, RefreshPayload{
		RequestedBy:   requestedBy,
		RequesterName: name,
		Timestamp:     h.clock.Now(),
	}, Except(c.ID))
	return nil
}

// onChat chat:message
func (h *Hub) onChat(c *Client, sender PresenceRecord, req *ChatRequest) error {
	if req.Text == "" || utf8.RuneCountInString(req.Text) > h.config.MaxChatLength {
		return invalid("Invalid message content")
	}
	h.accept(c)

	msg := *req
	if c.identity != nil || msg.SenderID == "" {
		msg.SenderID = sender.UserID
	}
	if c.identity != nil || msg.SenderName == "" {
		msg.SenderName = sender.DisplayName
	}

	var match Predicate = All
	if msg.TargetID != "" {
		match = ToUsers(msg.TargetID)
	}
	h.broadcastLocked(EventChatMessage, ChatPayload{
		ChatRequest: msg,
		Timestamp:   h.clock.Now(),
	}, match)
	return nil
}

// onHeartbeat heartbeat，未识别的连接也会收到应答
func (h *Hub) onHeartbeat(c *Client, _ *Message) error {
	now := h.clock.Now()
	h.registry.Touch(c.ID, now)
	h.sendTo(c, EventHeartbeatAck, HeartbeatAckPayload{
		Timestamp:       now,
		MemoryUsage:     h.heapInUse,
		ConnectionCount: h.registry.Identified(),
	})
	return nil
}
