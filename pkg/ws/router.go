package ws

import (
	"sync"
)

// Handler 事件处理器
type Handler func(*Client, *Message) error

// NextFunc 中间件下一步函数
type NextFunc func() error

// MiddlewareFunc 中间件函数
type MiddlewareFunc func(*Client, *Message, NextFunc) error

// Router 入站事件路由器
type Router struct {
	handlers   map[string]Handler
	middleware []MiddlewareFunc
	compiled   map[string]Handler // 预编译的处理器链
	mu         sync.RWMutex
	frozen     bool
}

// NewRouter 创建路由器
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
	}
}

// Register 注册处理器
func (r *Router) Register(event string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRouterFrozen
	}
	if _, exists := r.handlers[event]; exists {
		return ErrHandlerExists
	}

	r.handlers[event] = handler
	return nil
}

// Use 添加中间件
func (r *Router) Use(middleware ...MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// Freeze 冻结路由器并预编译处理器链
func (r *Router) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true

	r.compiled = make(map[string]Handler, len(r.handlers))
	for event, handler := range r.handlers {
		r.compiled[event] = r.buildChain(handler)
	}
}

// buildChain 构建中间件链
func (r *Router) buildChain(handler Handler) Handler {
	final := handler
	for i := len(r.middleware) - 1; i >= 0; i-- {
		mw, next := r.middleware[i], final
		final = func(c *Client, m *Message) error {
			return mw(c, m, func() error {
				return next(c, m)
			})
		}
	}
	return final
}

// Route 路由消息
func (r *Router) Route(client *Client, msg *Message) error {
	r.mu.RLock()
	var (
		handler Handler
		exists  bool
	)
	if r.frozen {
		handler, exists = r.compiled[msg.Event]
	} else {
		if handler, exists = r.handlers[msg.Event]; exists {
			handler = r.buildChain(handler)
		}
	}
	r.mu.RUnlock()

	if !exists {
		return ErrHandlerNotFound
	}
	return handler(client, msg)
}

// Events 已注册的事件
func (r *Router) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]string, 0, len(r.handlers))
	for event := range r.handlers {
		events = append(events, event)
	}
	return events
}

// HandlerFunc0 泛型处理器函数（有请求无响应）
type HandlerFunc0[Req any] func(*Client, *Req) error

// Handle0 注册泛型处理器，数据无法解析时返回校验错误
func Handle0[Req any](router *Router, event string, handler HandlerFunc0[Req]) error {
	return router.Register(event, func(c *Client, msg *Message) error {
		var req Req
		if err := msg.Bind(&req); err != nil {
			return invalid("Invalid " + event + " payload")
		}
		if v, ok := any(&req).(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		return handler(c, &req)
	})
}
