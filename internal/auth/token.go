// Package auth 会话令牌、密码与鉴权中间件
package auth

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL 会话有效期
const DefaultTokenTTL = 7 * 24 * time.Hour

// Principal 已登录用户
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Claims JWT 载荷
type Claims struct {
	Principal
	jwt.RegisteredClaims
}

// Issuer 签发与校验 HS256 令牌
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建签发器，ttl <= 0 时使用 DefaultTokenTTL
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL 令牌有效期
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue 签发令牌，返回令牌与过期时间
func (i *Issuer) Issue(p Principal) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := &Claims{
		Principal: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse 校验令牌
func (i *Issuer) Parse(raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenInvalid.WithError(err)
	}

	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return &claims.Principal, nil
}
