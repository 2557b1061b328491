package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/internal/service"
	"github.com/tokmz/uskup/pkg/ws"
)

// HealthResponse 健康检查
type HealthResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Connections int       `json:"connections"`
}

// RealtimeStats 实时中心统计与在线列表
type RealtimeStats struct {
	Stats ws.Stats            `json:"stats"`
	Users []ws.PresenceRecord `json:"users"`
}

func (h *Handler) health(c *uskup.Context) {
	c.Success(&HealthResponse{
		Status:      "ok",
		Message:     "Dashboard Uskup Surabaya API is running",
		Timestamp:   time.Now(),
		Connections: h.hub.Count(),
	})
}

func (h *Handler) getDashboard(c *uskup.Context) (*service.DashboardData, error) {
	return h.dashboard.Get(c.RequestContext())
}

func (h *Handler) realtimeStats(*uskup.Context) (*RealtimeStats, error) {
	users := h.hub.List()
	if users == nil {
		users = []ws.PresenceRecord{}
	}
	return &RealtimeStats{Stats: h.hub.Stats(), Users: users}, nil
}

// upgrade 握手时携带有效会话则使用已验证身份
func (h *Handler) upgrade(c *uskup.Context) {
	var identity *ws.Identity
	if p, err := h.auth.Resolve(c.Request()); err == nil {
		identity = &ws.Identity{UserID: p.UserID, Name: p.Name, Role: p.Role}
	}

	if err := h.hub.HandleUpgrade(c.Writer(), c.Request(), identity); err != nil {
		h.log.DebugContext(c.RequestContext(), "websocket upgrade refused", zap.Error(err))
	}
}
