package config

import "github.com/tokmz/uskup/pkg/errors"

var (
	// ErrConfigNotFound 配置文件未找到
	ErrConfigNotFound = errors.New(3101, 500, "config file not found", nil)
	// ErrConfigReadFailed 配置读取失败
	ErrConfigReadFailed = errors.New(3102, 500, "config read failed", nil)
)
