package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Option 配置选项函数
type Option func(*Config)

// WithConfigFile 指定配置文件完整路径
func WithConfigFile(path string) Option {
	return func(c *Config) { c.configFile = path }
}

// WithConfigName 设置配置文件名（不含扩展名）
func WithConfigName(name string) Option {
	return func(c *Config) { c.configName = name }
}

// WithConfigType 设置配置文件类型（yaml, json, toml）
func WithConfigType(typ string) Option {
	return func(c *Config) { c.configType = typ }
}

// WithConfigPaths 设置配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(c *Config) { c.configPaths = paths }
}

// WithAllowMissing 配置文件不存在时仅使用默认值与环境变量
func WithAllowMissing(allow bool) Option {
	return func(c *Config) { c.allowMissing = allow }
}

// WithAutoWatch Load 成功后自动监控文件变更
func WithAutoWatch(watch bool) Option {
	return func(c *Config) { c.autoWatch = watch }
}

// WithOnChange 设置配置变更回调
func WithOnChange(fn func(fsnotify.Event)) Option {
	return func(c *Config) { c.onChange = fn }
}

// WithOnError 设置错误回调
func WithOnError(fn func(error)) Option {
	return func(c *Config) { c.onError = fn }
}

// WithDefaults 设置默认配置值
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) { c.defaults = defaults }
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.envPrefix = prefix }
}

// WithEnvKeyReplacer 设置环境变量键名替换器，如 "." -> "_"
func WithEnvKeyReplacer(r *strings.Replacer) Option {
	return func(c *Config) { c.envKeyReplacer = r }
}
