package uskup

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterGroup 路由组
type RouterGroup struct {
	group *gin.RouterGroup
}

// ============ 路由组管理 ============

// Group 创建子路由组
func (rg *RouterGroup) Group(path string, middlewares ...HandlerFunc) *RouterGroup {
	handlers := WrapMiddlewares(middlewares...)
	return &RouterGroup{
		group: rg.group.Group(path, handlers...),
	}
}

// Use 注册中间件
func (rg *RouterGroup) Use(middlewares ...HandlerFunc) {
	handlers := WrapMiddlewares(middlewares...)
	rg.group.Use(handlers...)
}

// ============ 基础路由方法 ============

// handle 注册路由，中间件在处理函数之前执行
func (rg *RouterGroup) handle(method, path string, handler HandlerFunc, middlewares []HandlerFunc) {
	handlers := append(WrapMiddlewares(middlewares...), WrapHandler(handler))
	rg.group.Handle(method, path, handlers...)
}

// GET 注册 GET 路由
func (rg *RouterGroup) GET(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodGet, path, handler, middlewares)
}

// POST 注册 POST 路由
func (rg *RouterGroup) POST(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodPost, path, handler, middlewares)
}

// PUT 注册 PUT 路由
func (rg *RouterGroup) PUT(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodPut, path, handler, middlewares)
}

// DELETE 注册 DELETE 路由
func (rg *RouterGroup) DELETE(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodDelete, path, handler, middlewares)
}

// PATCH 注册 PATCH 路由
func (rg *RouterGroup) PATCH(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodPatch, path, handler, middlewares)
}

// OPTIONS 注册 OPTIONS 路由
func (rg *RouterGroup) OPTIONS(path string, handler HandlerFunc, middlewares ...HandlerFunc) {
	rg.handle(http.MethodOptions, path, handler, middlewares)
}

// ============ 高级泛型路由（自动绑定 + 自动响应）============

// RouteRegister 路由注册函数类型
type RouteRegister func(path string, handler HandlerFunc, middlewares ...HandlerFunc)

// Handle 有请求参数，有响应数据
// 自动绑定请求参数，自动处理响应
func Handle[Req any, Resp any](register RouteRegister, path string, handler func(*Context, *Req) (*Resp, error), middlewares ...HandlerFunc) {
	wrappedHandler := func(c *Context) {
		var req Req
		if err := autoBind(c, &req); err != nil {
			c.RespondError(err)
			return
		}
		resp, err := handler(c, &req)
		if err != nil {
			c.RespondError(err)
			return
		}
		c.Success(resp)
	}
	register(path, wrappedHandler, middlewares...)
}

// Handle0 有请求参数，无响应数据
// 自动绑定请求参数，自动处理响应
func Handle0[Req any](register RouteRegister, path string, handler func(*Context, *Req) error, middlewares ...HandlerFunc) {
	wrappedHandler := func(c *Context) {
		var req Req
		if err := autoBind(c, &req); err != nil {
			c.RespondError(err)
			return
		}
		if err := handler(c, &req); err != nil {
			c.RespondError(err)
			return
		}
		c.Nil()
	}
	register(path, wrappedHandler, middlewares...)
}

// HandleOnly 无请求参数，有响应数据
// 自动处理响应
func HandleOnly[Resp any](register RouteRegister, path string, handler func(*Context) (*Resp, error), middlewares ...HandlerFunc) {
	wrappedHandler := func(c *Context) {
		resp, err := handler(c)
		if err != nil {
			c.RespondError(err)
			return
		}
		c.Success(resp)
	}
	register(path, wrappedHandler, middlewares...)
}

// autoBind 根据请求方法自动选择绑定策略
func autoBind(c *Context, obj any) error {
	method := c.Request().Method

	// GET/DELETE: Query + URI
	if method == http.MethodGet || method == http.MethodDelete {
		if err := c.ShouldBindQuery(obj); err != nil {
			return c.wrapBindError(err)
		}
		// URI 绑定失败不阻断（路由可能没有 URI 参数）
		_ = c.ShouldBindUri(obj)
		return nil
	}

	// POST/PUT/PATCH: 根据 Content-Type 自动选择 + URI
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		if err := c.ShouldBind(obj); err != nil {
			return c.wrapBindError(err)
		}
		// URI 绑定失败不阻断
		_ = c.ShouldBindUri(obj)
		return nil
	}

	// 其他方法使用默认绑定
	if err := c.ShouldBind(obj); err != nil {
		return c.wrapBindError(err)
	}
	return nil
}
