package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/ws"
)

// Channel 多实例共享的 Redis 频道
const Channel = "uskup:realtime"

// relayMessage 频道消息
type relayMessage struct {
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	Exclude string          `json:"exclude,omitempty"`
}

// RedisPublisher 通过 Redis 频道广播，各实例的 Subscriber 再推送到本地 Hub
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	local   *LocalPublisher
	now     func() time.Time
}

// NewRedis 创建 Redis 发布器，local 在 Redis 不可用时兜底
func NewRedis(client redis.UniversalClient, local *LocalPublisher) *RedisPublisher {
	return &RedisPublisher{client: client, channel: Channel, local: local, now: time.Now}
}

// Publish 发布到频道，失败时退回本地推送并返回错误
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := e.payload(p.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(relayMessage{Event: ws.EventDataChanged, Data: data})
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		if p.local != nil {
			p.local.hub.Publish(ws.EventDataChanged, payload, "")
		}
		return err
	}
	return nil
}

// Subscriber 订阅频道并推送到本地 Hub
type Subscriber struct {
	client  redis.UniversalClient
	channel string
	hub     Broadcaster
	log     logger.Logger
}

// NewSubscriber 创建订阅者
func NewSubscriber(client redis.UniversalClient, hub Broadcaster, log logger.Logger) *Subscriber {
	if log == nil {
		log = logger.Nop()
	}
	return &Subscriber{client: client, channel: Channel, hub: hub, log: log.Named("notify")}
}

// Run 阻塞直到 ctx 取消
func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	// 等待订阅确认，保证之后发布的消息不会丢失
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	s.log.Info("realtime relay subscribed", zap.String("channel", s.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			s.deliver(m.Payload)
		}
	}
}

func (s *Subscriber) deliver(raw string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil || msg.Event == "" {
		s.log.Warn("realtime relay bad message", zap.String("payload", raw), zap.Error(err))
		return
	}
	n := s.hub.Publish(msg.Event, msg.Data, msg.Exclude)
	s.log.Debug("realtime relay delivered", zap.String("event", msg.Event), zap.Int("connections", n))
}
