package repository

import "github.com/tokmz/uskup/pkg/errors"

var (
	// ErrQueryFailed 数据库操作失败
	ErrQueryFailed = errors.New(4000, 500, "database error", nil)
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New(4004, 404, "record not found", nil)
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New(4009, 409, "record already exists", nil)
)
