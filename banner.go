package uskup

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"
)

// Version 服务版本号
const Version = "1.0.0"

const banner = `
 _   _ ____  _  __ _   _ ____
| | | / ___|| |/ /| | | |  _ \    Dashboard Keuskupan Surabaya
| | | \___ \| ' / | | | | |_) |   open: %s
| |_| |___) | . \ | |_| |  __/    version: %s
 \___/|____/|_|\_\ \___/|_|
`

// printBanner 打印启动 banner 和路由表
func (e *Engine) printBanner(addr string) {
	out := os.Stdout

	var open string
	switch {
	case strings.HasPrefix(addr, ":"):
		open = "http://127.0.0.1" + addr
	case strings.Contains(addr, ":"):
		open = "http://" + addr
	default:
		open = "http://127.0.0.1:" + addr
	}

	fPrint(out, banner, open, Version)
	fPrint(out, "\n")

	if routes := e.engine.Routes(); len(routes) > 0 {
		printRoutes(out, routes, e.config.Mode)
		fPrint(out, "\n")
	}

	if e.config.Mode == gin.DebugMode {
		fPrint(out, "[uskup] Running in \"%s\" mode. Switch to \"release\" mode in production.\n", e.config.Mode)
	} else {
		fPrint(out, "[uskup] Running in \"%s\" mode.\n", e.config.Mode)
	}
	fPrint(out, "[uskup] Go version: %s | OS: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fPrint(out, "[uskup] Listening on %s\n", addr)
}

// methodColor 根据 HTTP 方法返回 ANSI 颜色码
func methodColor(method string) string {
	switch method {
	case "GET":
		return "\033[34m"
	case "POST":
		return "\033[32m"
	case "PUT":
		return "\033[33m"
	case "DELETE":
		return "\033[31m"
	case "PATCH":
		return "\033[36m"
	default:
		return "\033[0m"
	}
}

const resetColor = "\033[0m"

// printRoutes 格式化打印路由表
func printRoutes(out io.Writer, routes gin.RoutesInfo, mode string) {
	width := 0
	for _, r := range routes {
		width = max(width, len(r.Path))
	}

	for _, r := range routes {
		fPrint(out, "[uskup-%s] %s %-7s %s %-*s --> %s\n",
			mode,
			methodColor(r.Method), r.Method, resetColor,
			width, r.Path,
			r.Handler)
	}
}

// silenceGin 静默 Gin 的默认输出
func silenceGin() {
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard
}

// fPrint 打印到 writer，忽略错误
func fPrint(out io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(out, format, a...)
}
