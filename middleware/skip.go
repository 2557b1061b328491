package middleware

import (
	"strings"

	"github.com/tokmz/uskup"
)

// skipper 合并排除路径与自定义跳过函数
func skipper(paths []string, fn func(c *uskup.Context) bool) func(c *uskup.Context) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c *uskup.Context) bool {
		if _, ok := set[c.Request().URL.Path]; ok {
			return true
		}
		return fn != nil && fn(c)
	}
}

// IsWebSocket 是否为 WebSocket 升级请求
func IsWebSocket(c *uskup.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(c.GetHeader("Connection")), "upgrade")
}
