// Package handler HTTP 接口
package handler

import (
	"net/http"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/service"
	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/ws"
)

// Hub 实时中心，*ws.Hub 满足该接口
type Hub interface {
	HandleUpgrade(w http.ResponseWriter, r *http.Request, identity *ws.Identity) error
	Count() int
	List() []ws.PresenceRecord
	Stats() ws.Stats
}

// Options 依赖
type Options struct {
	Records   *service.Records
	Dashboard *service.Dashboard
	Account   *service.Account
	Auth      *auth.Authenticator
	Hub       Hub
	Logger    logger.Logger
}

// Handler 路由处理
type Handler struct {
	records   *service.Records
	dashboard *service.Dashboard
	account   *service.Account
	auth      *auth.Authenticator
	hub       Hub
	log       logger.Logger
}

// New 创建处理器
func New(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Handler{
		records:   opts.Records,
		dashboard: opts.Dashboard,
		account:   opts.Account,
		auth:      opts.Auth,
		hub:       opts.Hub,
		log:       opts.Logger,
	}
}

// Register 注册全部路由
//
//	/ws                     WebSocket
//	/api/health             健康检查
//	/api/auth/*             登录与密码
//	/api/dashboard          仪表盘
//	/api/realtime/stats     实时统计
//	/api/<kind>[/:id]       记录增删改查
func (h *Handler) Register(r *uskup.RouterGroup) {
	r.GET("/ws", h.upgrade)

	api := r.Group("/api")
	api.GET("/health", h.health)

	required := h.auth.Require()

	authGroup := api.Group("/auth")
	uskup.Handle[LoginRequest, UserResponse](authGroup.POST, "/login", h.login)
	authGroup.POST("/logout", h.logout)
	uskup.HandleOnly[UserResponse](authGroup.GET, "/me", h.me, required)
	uskup.HandleOnly[service.PasswordStatus](authGroup.GET, "/password", h.passwordStatus, required)
	uskup.Handle[ChangePasswordRequest, service.PasswordStatus](authGroup.POST, "/password", h.changePassword, required)
	authGroup.PUT("/password", h.generatePassword, required)

	uskup.HandleOnly[service.DashboardData](api.GET, "/dashboard", h.getDashboard)
	uskup.HandleOnly[RealtimeStats](api.GET, "/realtime/stats", h.realtimeStats, required)

	h.registerRecords(api, required)
}
