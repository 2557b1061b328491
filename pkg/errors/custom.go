package errors

// 内置通用错误码（1xxx）
var (
	// ErrServer 服务器错误
	ErrServer = New(1000, 500, "internal server error", nil)
	// ErrBadRequest 请求参数错误
	ErrBadRequest = New(1001, 400, "bad request", nil)
	// ErrUnauthorized 未认证
	ErrUnauthorized = New(1002, 401, "not authenticated", nil)
	// ErrForbidden 无权限
	ErrForbidden = New(1003, 403, "forbidden", nil)
	// ErrNotFound 资源不存在
	ErrNotFound = New(1004, 404, "resource not found", nil)
	// ErrConflict 资源冲突
	ErrConflict = New(1005, 409, "resource conflict", nil)
	// ErrTooManyRequests 请求过于频繁
	ErrTooManyRequests = New(1006, 429, "too many requests", nil)
	// ErrServiceUnavailable 服务不可用
	ErrServiceUnavailable = New(1007, 503, "service unavailable", nil)
)

// ErrRequestTimeout 请求超时
var ErrRequestTimeout = New(1008, 408, "request timeout", nil)
