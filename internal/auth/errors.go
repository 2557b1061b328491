package auth

import "github.com/tokmz/uskup/pkg/errors"

var (
	// ErrUnauthenticated 未登录
	ErrUnauthenticated = errors.New(2001, 401, "unauthorized", nil)
	// ErrTokenInvalid 令牌无效
	ErrTokenInvalid = errors.New(2002, 401, "invalid token", nil)
	// ErrTokenExpired 令牌过期
	ErrTokenExpired = errors.New(2003, 401, "token expired", nil)
	// ErrForbidden 权限不足
	ErrForbidden = errors.New(2004, 403, "insufficient permissions", nil)
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New(2005, 401, "invalid email or password", nil)
	// ErrPasswordTooShort 密码过短
	ErrPasswordTooShort = errors.New(2006, 400, "password must be at least 6 characters long", nil)
	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = errors.New(2007, 400, "password does not meet requirements", nil)
	// ErrCurrentPasswordRequired 修改密码需要当前密码
	ErrCurrentPasswordRequired = errors.New(2008, 400, "current password is required", nil)
	// ErrCurrentPasswordIncorrect 当前密码错误
	ErrCurrentPasswordIncorrect = errors.New(2009, 400, "current password is incorrect", nil)
	// ErrLoginLocked 登录失败次数过多
	ErrLoginLocked = errors.New(2010, 429, "too many failed login attempts", nil)
)
