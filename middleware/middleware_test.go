package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(middlewares ...uskup.HandlerFunc) *uskup.Engine {
	e := uskup.New(uskup.WithMode(gin.TestMode), uskup.WithBanner(false))
	e.Use(middlewares...)
	e.RouterGroup().GET("/ping", func(c *uskup.Context) { c.Success("pong") })
	return e
}

func do(e *uskup.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	e := newEngine(CORS(&CORSConfig{
		AllowOrigins:     []string{"https://dashboard.keuskupan-sby.or.id", "https://*.preview.example"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"exact", "https://dashboard.keuskupan-sby.or.id", "https://dashboard.keuskupan-sby.or.id"},
		{"wildcard", "https://pr-12.preview.example", "https://pr-12.preview.example"},
		{"wildcard needs subdomain", "https://.preview.example", ""},
		{"denied", "https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := do(e, req)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://dashboard.keuskupan-sby.or.id")
		w := do(e, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestCORS_CredentialsWithWildcardPanics(t *testing.T) {
	assert.Panics(t, func() {
		CORS(&CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})
	})
}

func TestRateLimiter(t *testing.T) {
	store, err := cache.New(cache.DefaultConfig())
	require.NoError(t, err)
	defer store.Close()

	e := newEngine(RateLimiter(&RateLimiterConfig{
		Limit:        2,
		Window:       time.Hour,
		Store:        store,
		ExcludePaths: []string{"/health"},
	}))

	for i := range 2 {
		w := do(e, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
	w := do(e, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// 其他客户端不受影响
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	assert.Equal(t, http.StatusOK, do(e, req).Code)
}

func TestTimeout(t *testing.T) {
	e := uskup.New(uskup.WithMode(gin.TestMode), uskup.WithBanner(false))
	e.Use(Timeout(&TimeoutConfig{Timeout: 10 * time.Millisecond}))
	e.RouterGroup().GET("/slow", func(c *uskup.Context) {
		<-c.Request().Context().Done()
	})
	e.RouterGroup().GET("/fast", func(c *uskup.Context) { c.Nil() })

	assert.Equal(t, http.StatusRequestTimeout, do(e, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, do(e, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestGzip(t *testing.T) {
	e := uskup.New(uskup.WithMode(gin.TestMode), uskup.WithBanner(false))
	e.Use(Gzip(&GzipConfig{Level: gzip.BestSpeed, MinLength: 64}))
	e.RouterGroup().GET("/big", func(c *uskup.Context) { c.Success(strings.Repeat("agenda ", 100)) })
	e.RouterGroup().GET("/small", func(c *uskup.Context) { c.Nil() })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := do(e, req)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "agenda agenda")

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = do(e, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), `"message":"success"`)
}

func TestIsWebSocket(t *testing.T) {
	var got bool
	e := uskup.New(uskup.WithMode(gin.TestMode), uskup.WithBanner(false))
	e.RouterGroup().GET("/ws", func(c *uskup.Context) {
		got = IsWebSocket(c)
		c.Nil()
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "keep-alive, Upgrade")
	do(e, req)
	assert.True(t, got)
}
