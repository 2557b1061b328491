package auth

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/tokmz/uskup"
)

const (
	// DefaultCookieName 会话 Cookie 名
	DefaultCookieName = "auth-token"

	principalKey = "principal"
)

// Config 鉴权配置
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	CookieName string
	// Secure 仅 HTTPS 发送 Cookie，release 模式开启
	Secure bool
}

// Authenticator 从 Cookie 或 Bearer 头解析会话
type Authenticator struct {
	issuer *Issuer
	cookie string
	secure bool
}

// New 创建鉴权器
func New(cfg Config) *Authenticator {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Authenticator{
		issuer: NewIssuer(cfg.Secret, cfg.TokenTTL),
		cookie: cfg.CookieName,
		secure: cfg.Secure,
	}
}

// Issuer 令牌签发器
func (a *Authenticator) Issuer() *Issuer { return a.issuer }

// Resolve 解析请求中的会话，Cookie 优先
func (a *Authenticator) Resolve(r *http.Request) (*Principal, error) {
	var raw string
	if ck, err := r.Cookie(a.cookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			raw = strings.TrimSpace(h[7:])
		}
	}
	return a.issuer.Parse(raw)
}

// Login 签发令牌并写入 Cookie
func (a *Authenticator) Login(c *uskup.Context, p Principal) (string, error) {
	token, _, err := a.issuer.Issue(p)
	if err != nil {
		return "", err
	}
	c.SetCookie(a.newCookie(token, int(a.issuer.TTL()/time.Second)))
	return token, nil
}

// Logout 清除 Cookie
func (a *Authenticator) Logout(c *uskup.Context) {
	c.SetCookie(a.newCookie("", -1))
}

func (a *Authenticator) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Authenticate 可选鉴权，有效会话写入上下文，无会话时继续
func (a *Authenticator) Authenticate() uskup.HandlerFunc {
	return func(c *uskup.Context) {
		if p, err := a.Resolve(c.Request()); err == nil {
			setPrincipal(c, p)
		}
		c.Next()
	}
}

// Require 必须登录
func (a *Authenticator) Require() uskup.HandlerFunc {
	return func(c *uskup.Context) {
		p, err := a.Resolve(c.Request())
		if err != nil {
			c.RespondError(err)
			c.Abort()
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequireRole 必须为指定角色之一，需在 Require 之后使用
func RequireRole(roles ...string) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		p, ok := FromContext(c)
		if !ok {
			c.RespondError(ErrUnauthenticated)
			c.Abort()
			return
		}
		if !slices.Contains(roles, p.Role) {
			c.RespondError(ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// FromContext 当前会话
func FromContext(c *uskup.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

func setPrincipal(c *uskup.Context, p *Principal) {
	c.Set(principalKey, p)
	uskup.SetContextUid(c, p.UserID)
	uskup.SetContextRole(c, p.Role)
}
