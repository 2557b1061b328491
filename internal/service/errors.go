package service

import "github.com/tokmz/uskup/pkg/errors"

var (
	// ErrMissingFields 缺少必填字段
	ErrMissingFields = errors.New(5001, 400, "missing required fields", nil)
	// ErrInvalidField 字段类型错误
	ErrInvalidField = errors.New(5002, 400, "invalid field value", nil)
	// ErrUnknownKind 未知记录类型
	ErrUnknownKind = errors.New(5004, 404, "unknown record type", nil)
)
