package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tokmz/uskup"
)

// GzipConfig Gzip 压缩中间件配置
type GzipConfig struct {
	// Level 压缩级别（默认 gzip.DefaultCompression）
	Level int `mapstructure:"level"`

	// MinLength 最小压缩长度（字节），小于此值不压缩（默认 1024）
	MinLength int `mapstructure:"min_length"`

	// ExcludePaths 排除的路径（不压缩）
	ExcludePaths []string `mapstructure:"exclude_paths"`
}

// defaultGzipConfig 返回默认配置
func defaultGzipConfig() *GzipConfig {
	return &GzipConfig{
		Level:     gzip.DefaultCompression,
		MinLength: 1024,
	}
}

// gzipWriter 包装 gin.ResponseWriter，实现 gzip 压缩写入
type gzipWriter struct {
	gin.ResponseWriter
	writer      *gzip.Writer
	minLength   int
	buf         []byte
	wroteHeader bool
	useGzip     bool
}

// Write 写入数据
func (g *gzipWriter) Write(data []byte) (int, error) {
	if !g.wroteHeader {
		g.buf = append(g.buf, data...)
		if len(g.buf) < g.minLength {
			return len(data), nil
		}
		g.useGzip = true
		g.wroteHeader = true
		g.ResponseWriter.Header().Set("Content-Encoding", "gzip")
		g.ResponseWriter.Header().Set("Vary", "Accept-Encoding")
		g.ResponseWriter.Header().Del("Content-Length")
		_, err := g.writer.Write(g.buf)
		if err != nil {
			return 0, err
		}
		g.buf = nil
		return len(data), nil
	}
	if g.useGzip {
		return g.writer.Write(data)
	}
	return g.ResponseWriter.Write(data)
}

// WriteString 写入字符串
func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// flush 刷出剩余缓冲区数据
func (g *gzipWriter) flush() {
	if !g.wroteHeader && len(g.buf) > 0 {
		// 未达到最小长度，原样写出
		g.wroteHeader = true
		_, _ = g.ResponseWriter.Write(g.buf)
		g.buf = nil
	}
}

// gzipPools 按压缩级别复用 gzip.Writer
var gzipPools = sync.Map{}

func getGzipPool(level int) *sync.Pool {
	if pool, ok := gzipPools.Load(level); ok {
		return pool.(*sync.Pool)
	}
	pool := &sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}
	actual, _ := gzipPools.LoadOrStore(level, pool)
	return actual.(*sync.Pool)
}

// Gzip 创建 Gzip 压缩中间件
// 对支持 gzip 的客户端压缩 JSON 响应，WebSocket 升级请求原样放行
func Gzip(cfgs ...*GzipConfig) uskup.HandlerFunc {
	cfg := defaultGzipConfig()
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	}
	skip := skipper(cfg.ExcludePaths, nil)
	pool := getGzipPool(cfg.Level)

	return func(c *uskup.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") || IsWebSocket(c) || skip(c) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		ginWriter := c.Writer()
		gz.Reset(ginWriter)

		gw := &gzipWriter{
			ResponseWriter: ginWriter,
			writer:         gz,
			minLength:      cfg.MinLength,
		}
		c.SetWriter(gw)

		c.Next()

		gw.flush()
		if gw.useGzip {
			_ = gz.Close()
		}
		gz.Reset(io.Discard)
		pool.Put(gz)
	}
}
