// Package conf 应用配置：从 configs/config.yaml 与 USKUP_ 前缀环境变量加载
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/middleware"
	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/config"
	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/orm"
	"github.com/tokmz/uskup/pkg/tracing"
	"github.com/tokmz/uskup/pkg/ws"
)

// EnvPrefix 环境变量前缀，如 USKUP_AUTH_SECRET
const EnvPrefix = "USKUP"

// App 应用配置
type App struct {
	Mode     string             `mapstructure:"mode"`
	Server   uskup.ServerConfig `mapstructure:"server"`
	Shutdown time.Duration      `mapstructure:"shutdown_timeout"`

	Log       Log                          `mapstructure:"log"`
	Database  Database                     `mapstructure:"database"`
	Cache     cache.Config                 `mapstructure:"cache"`
	Tracing   tracing.Config               `mapstructure:"tracing"`
	Auth      Auth                         `mapstructure:"auth"`
	WS        WS                           `mapstructure:"ws"`
	CORS      middleware.CORSConfig        `mapstructure:"cors"`
	RateLimit middleware.RateLimiterConfig `mapstructure:"ratelimit"`
	Timeout   middleware.TimeoutConfig     `mapstructure:"timeout"`
	Gzip      middleware.GzipConfig        `mapstructure:"gzip"`
}

// Log 日志配置
type Log struct {
	Level    string                 `mapstructure:"level"`
	Format   string                 `mapstructure:"format"`
	Console  bool                   `mapstructure:"console"`
	File     string                 `mapstructure:"file"`
	Rotate   *logger.RotateConfig   `mapstructure:"rotate"`
	Sampling *logger.SamplingConfig `mapstructure:"sampling"`
	Caller   bool                   `mapstructure:"caller"`
}

// Database 数据库配置
type Database struct {
	orm.Config `mapstructure:",squash"`

	// AutoMigrate 启动时执行 gorm AutoMigrate，仅用于开发环境
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Auth 登录会话配置
type Auth struct {
	Secret     string        `mapstructure:"secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	CookieName string        `mapstructure:"cookie_name"`

	// LoginLimit 锁定窗口内允许的失败次数
	LoginLimit   int           `mapstructure:"login_limit"`
	LoginLockout time.Duration `mapstructure:"login_lockout"`

	// Bootstrap 数据库中没有用户时创建的初始管理员
	Bootstrap Bootstrap `mapstructure:"bootstrap"`
}

// Bootstrap 初始管理员
type Bootstrap struct {
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Role     string `mapstructure:"role"`
	Password string `mapstructure:"password"`
}

// WS 实时中心配置
type WS struct {
	ws.Config `mapstructure:",squash"`

	// Relay 通过 Redis 频道在多实例间转发服务端事件，需 cache.driver=redis
	Relay bool `mapstructure:"relay"`
}

// Default 默认配置
func Default() *App {
	return &App{
		Mode: gin.ReleaseMode,
		Server: uskup.ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		Shutdown: 15 * time.Second,
		Log: Log{
			Level:   "info",
			Format:  string(logger.JSONFormat),
			Console: true,
		},
		Database: Database{Config: *orm.DefaultConfig()},
		Cache:    defaultCache(),
		Tracing:  *tracing.DefaultConfig(),
		Auth: Auth{
			TokenTTL:     7 * 24 * time.Hour,
			CookieName:   "auth-token",
			LoginLimit:   5,
			LoginLockout: 15 * time.Minute,
		},
		WS:   WS{Config: *ws.DefaultConfig()},
		CORS: middleware.CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		RateLimit: middleware.RateLimiterConfig{
			Limit:  300,
			Window: time.Minute,
		},
		Timeout: middleware.TimeoutConfig{Timeout: 30 * time.Second},
		Gzip:    middleware.GzipConfig{Level: -1, MinLength: 1024},
	}
}

func defaultCache() cache.Config {
	c := *cache.DefaultConfig()
	c.Redis = cache.DefaultRedisConfig()
	return c
}

// envKeys 可通过环境变量覆盖的键，viper 只为已知键读取环境变量
var envKeys = map[string]any{
	"mode":                    gin.ReleaseMode,
	"server.addr":             ":8080",
	"log.level":               "info",
	"log.format":              "json",
	"database.type":           string(orm.SQLite),
	"database.dsn":            "uskup.db",
	"database.auto_migrate":   false,
	"cache.driver":            string(cache.DriverMemory),
	"cache.redis.addr":        "localhost:6379",
	"cache.redis.password":    "",
	"tracing.enabled":         false,
	"tracing.exporter":        "noop",
	"tracing.endpoint":        "",
	"auth.secret":             "",
	"auth.bootstrap.email":    "",
	"auth.bootstrap.password": "",
	"ws.require_auth":         false,
	"ws.relay":                false,
	"ws.max_connections":      100,
}

// Load 读取配置文件与环境变量，path 为空时在 ./configs 与当前目录查找 config.yaml
func Load(path string, opts ...config.Option) (*App, *config.Config, error) {
	base := []config.Option{
		config.WithDefaults(envKeys),
		config.WithEnvPrefix(EnvPrefix),
		config.WithEnvKeyReplacer(strings.NewReplacer(".", "_")),
		config.WithAllowMissing(path == ""),
	}
	if path != "" {
		base = append(base, config.WithConfigFile(path))
	} else {
		base = append(base,
			config.WithConfigName("config"),
			config.WithConfigType("yaml"),
			config.WithConfigPaths("./configs", "."),
		)
	}

	c := config.New(append(base, opts...)...)
	if err := c.Load(); err != nil {
		return nil, nil, err
	}

	app := Default()
	if err := c.Unmarshal(app); err != nil {
		return nil, nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, nil, err
	}
	return app, c, nil
}

// Validate 校验跨模块约束
func (a *App) Validate() error {
	if a.Auth.Secret == "" {
		return fmt.Errorf("conf: auth.secret is required")
	}
	if len(a.Auth.Secret) < 32 && a.Mode == gin.ReleaseMode {
		return fmt.Errorf("conf: auth.secret must be at least 32 bytes in release mode")
	}
	if a.WS.Relay && a.Cache.Driver != cache.DriverRedis {
		return fmt.Errorf("conf: ws.relay requires cache.driver=redis")
	}
	if err := a.Cache.Validate(); err != nil {
		return err
	}
	if a.Tracing.Enabled {
		if err := a.Tracing.Validate(); err != nil {
			return err
		}
	}
	return a.WS.Config.Validate()
}

// LoggerConfig 转换为 logger.Config
func (l Log) LoggerConfig() (*logger.Config, error) {
	level, err := logger.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	return &logger.Config{
		Level:        level,
		Format:       logger.Format(l.Format),
		Console:      l.Console,
		File:         l.File,
		Rotate:       l.Rotate,
		Sampling:     l.Sampling,
		EnableCaller: l.Caller,
	}, nil
}
