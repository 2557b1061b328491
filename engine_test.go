package uskup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup/pkg/errors"
	"github.com/tokmz/uskup/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, e *Engine, method, target, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

type echoReq struct {
	ID   string `uri:"id"`
	Name string `json:"name" form:"name" binding:"required"`
}

type echoResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestEngine() *Engine {
	e := New(WithMode(gin.TestMode), WithLogger(logger.Nop()), WithBanner(false))
	e.Use(RequestID())
	return e
}

func TestHandle_BindAndRespond(t *testing.T) {
	e := newTestEngine()
	api := e.Group("/api")
	Handle[echoReq, echoResp](api.POST, "/echo/:id", func(c *Context, req *echoReq) (*echoResp, error) {
		return &echoResp{ID: req.ID, Name: req.Name}, nil
	})

	w, resp := serve(t, e, http.MethodPost, "/api/echo/42", `{"name":"Agnes"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"id": "42", "name": "Agnes"}, resp.Data)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, resp.TraceID, w.Header().Get(HeaderRequestID))
}

func TestHandle_BindError(t *testing.T) {
	e := newTestEngine()
	Handle[echoReq, echoResp](e.RouterGroup().POST, "/echo/:id", func(c *Context, req *echoReq) (*echoResp, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})

	w, resp := serve(t, e, http.MethodPost, "/echo/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrBadRequest.Code, resp.Code)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"business error", errors.ErrNotFound.WithMessage("Agenda not found"), http.StatusNotFound, errors.ErrNotFound.Code},
		{"unauthorized", errors.ErrUnauthorized, http.StatusUnauthorized, errors.ErrUnauthorized.Code},
		{"unknown error", assert.AnError, http.StatusInternalServerError, errors.ErrServer.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			HandleOnly[echoResp](e.RouterGroup().GET, "/fail", func(c *Context) (*echoResp, error) {
				return nil, tt.err
			})

			w, resp := serve(t, e, http.MethodGet, "/fail", "")
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestHandle0_Nil(t *testing.T) {
	e := newTestEngine()
	Handle0[echoReq](e.RouterGroup().DELETE, "/items/:id", func(c *Context, req *echoReq) error {
		assert.Equal(t, "x1", req.ID)
		return nil
	})

	w, resp := serve(t, e, http.MethodDelete, "/items/x1?name=n", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "success", resp.Message)
}

func TestContext_ListNeverNull(t *testing.T) {
	e := newTestEngine()
	e.RouterGroup().GET("/list", func(c *Context) {
		c.List(nil, 0)
	})

	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
	assert.Contains(t, w.Body.String(), `"list":[]`)
}

func TestRecovery(t *testing.T) {
	e := newTestEngine()
	e.RouterGroup().GET("/panic", func(c *Context) {
		panic("boom")
	})

	w, resp := serve(t, e, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRequestContext_CarriesTraceAndUID(t *testing.T) {
	e := newTestEngine()
	var traceID, uid string
	e.RouterGroup().GET("/ctx", func(c *Context) {
		SetContextUid(c, "u-1")
		ctx := c.RequestContext()
		traceID = logger.TraceIDFromContext(ctx)
		uid = logger.UIDFromContext(ctx)
		c.Nil()
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	e.Handler().ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-123", traceID)
	assert.Equal(t, "u-1", uid)
}
