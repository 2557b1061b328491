package ws

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 一个 WebSocket 连接
type Client struct {
	ID         string
	conn       *websocket.Conn
	hub        *Hub
	identity   *Identity // 握手时验证过的身份，可能为空
	remoteAddr string

	// 发送队列，从不关闭，写协程随 ctx 退出
	send chan []byte

	// 生命周期
	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once

	// 连续无效帧计数
	invalidFrames atomic.Int32
}

// newClient 创建客户端，conn 为空时只使用发送队列（测试）
func newClient(h *Hub, conn *websocket.Conn, identity *Identity) *Client {
	ctx, cancel := context.WithCancel(h.ctx)
	c := &Client{
		ID:       uuid.NewString(),
		conn:     conn,
		hub:      h,
		identity: identity,
		send:     make(chan []byte, h.config.SendQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	if conn != nil {
		c.remoteAddr = conn.RemoteAddr().String()
	}
	return c
}

// Identity 握手身份
func (c *Client) Identity() *Identity {
	return c.identity
}

// RemoteAddr 远程地址
func (c *Client) RemoteAddr() string {
	return c.remoteAddr
}

// run 运行读写协程直到连接结束
func (c *Client) run() {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c.readPump()
	}()

	go func() {
		defer wg.Done()
		c.writePump()
	}()

	wg.Wait()
}

// readPump 读取消息
func (c *Client) readPump() {
	defer c.Close()

	cfg := c.hub.config
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(cfg.HeartbeatTimeout)); err != nil {
		c.hub.metrics.IncrementReadErrors()
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.HeartbeatTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.metrics.IncrementReadErrors()
				c.hub.log.Debug("ws read failed", zap.String("conn_id", c.ID), zap.Error(err))
			}
			return
		}
		c.hub.dispatch(c, data)
	}
}

// writePump 写入消息，退出前尽量把队列中剩余的帧写完
func (c *Client) writePump() {
	cfg := c.hub.config
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.flush()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteWait))
			return

		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.hub.metrics.IncrementWriteErrors()
				c.Close()
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// flush 写出队列中剩余的帧
func (c *Client) flush() {
	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// write 写入一帧
func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// enqueue 非阻塞入队，失败返回 ErrDeliverySkipped
func (c *Client) enqueue(frame []byte) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: %w", ErrDeliverySkipped, ErrConnectionClosed)
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrDeliverySkipped, ErrQueueFull)
	}
}

// Close 关闭客户端，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
	})
}

// IsClosed 检查是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
