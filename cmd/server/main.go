// Command server 启动仪表盘 API 与实时中心
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/conf"
	"github.com/tokmz/uskup/internal/handler"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/notify"
	"github.com/tokmz/uskup/internal/service"
	"github.com/tokmz/uskup/middleware"
	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/config"
	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/orm"
	"github.com/tokmz/uskup/pkg/tracing"
	"github.com/tokmz/uskup/pkg/ws"
)

func main() {
	path := flag.String("config", "", "配置文件路径，默认查找 ./configs/config.yaml")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "uskup: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	var (
		log logger.Logger
		cc  *config.Config
	)
	cfg, cc, err := conf.Load(path, config.WithOnChange(func(fsnotify.Event) {
		reloadLogLevel(cc, log)
	}))
	if err != nil {
		return err
	}

	logCfg, err := cfg.Log.LoggerConfig()
	if err != nil {
		return err
	}
	log, err = logger.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	cc.StartWatch()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.NewTracerProvider(ctx, &cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = tp.Shutdown(sctx)
	}()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = orm.Close(db) }()

	store, client, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	hub, err := ws.NewHub(ws.WithConfig(cfg.WS.Config), ws.WithLogger(log))
	if err != nil {
		return err
	}
	go hub.Run(ctx)

	local := notify.NewLocal(hub)
	var publisher notify.Publisher = local
	if cfg.WS.Relay && client != nil {
		publisher = notify.NewRedis(client, local)
		sub := notify.NewSubscriber(client, hub, log)
		go func() {
			if err := sub.Run(ctx); err != nil {
				log.Error("realtime relay stopped", zap.Error(err))
			}
		}()
		log.Info("realtime relay enabled", zap.String("channel", notify.Channel))
	}

	dashboard := service.NewDashboard(db, store)
	records := service.NewRecords(db, service.NewChanges(publisher, dashboard, log))
	account := service.NewAccount(db, auth.NewHasher(auth.DefaultCost), store, service.AccountConfig{
		LoginLimit:   cfg.Auth.LoginLimit,
		LoginLockout: cfg.Auth.LoginLockout,
	}, log)

	if b := cfg.Auth.Bootstrap; b.Email != "" && b.Password != "" {
		if _, err := account.EnsureBootstrap(ctx, service.Bootstrap{
			Email:    b.Email,
			Name:     b.Name,
			Role:     b.Role,
			Password: b.Password,
		}); err != nil {
			return fmt.Errorf("bootstrap user: %w", err)
		}
	}

	authenticator := auth.New(auth.Config{
		Secret:     cfg.Auth.Secret,
		TokenTTL:   cfg.Auth.TokenTTL,
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Mode == gin.ReleaseMode,
	})

	engine := uskup.New(
		uskup.WithMode(cfg.Mode),
		uskup.WithServer(cfg.Server),
		uskup.WithShutdownTimeout(cfg.Shutdown),
		uskup.WithLogger(log),
		uskup.WithBeforeShutdown(func() {
			sctx, scancel := context.WithTimeout(context.Background(), cfg.Shutdown)
			defer scancel()
			if err := hub.Shutdown(sctx); err != nil {
				log.Warn("ws hub shutdown incomplete", zap.Error(err))
			}
			cancel()
		}),
	)

	rateLimit := cfg.RateLimit
	rateLimit.Store = store
	rateLimit.Logger = log

	engine.Use(
		uskup.RequestID(),
		middleware.Tracing(),
		uskup.Logger(log),
		middleware.CORS(&cfg.CORS),
		middleware.RateLimiter(&rateLimit),
		middleware.Timeout(&cfg.Timeout),
		middleware.Gzip(&cfg.Gzip),
	)

	handler.New(handler.Options{
		Records:   records,
		Dashboard: dashboard,
		Account:   account,
		Auth:      authenticator,
		Hub:       hub,
		Logger:    log,
	}).Register(engine.RouterGroup())

	return engine.Run()
}

// openDatabase 连接数据库，开发环境按配置自动建表
func openDatabase(cfg *conf.App, log logger.Logger) (*gorm.DB, error) {
	db, err := orm.New(&cfg.Database.Config, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(model.Models()...); err != nil {
			_ = orm.Close(db)
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, nil
}

// openCache redis 驱动时同时返回客户端供事件转发使用
func openCache(cfg *conf.App) (cache.Cache, redis.UniversalClient, error) {
	var (
		store  cache.Cache
		client redis.UniversalClient
		err    error
	)
	if cfg.Cache.Driver == cache.DriverRedis {
		if err := cfg.Cache.Validate(); err != nil {
			return nil, nil, err
		}
		client, err = cache.NewRedisClient(cfg.Cache.Redis)
		if err != nil {
			return nil, nil, err
		}
		store = cache.NewRedis(client, &cfg.Cache)
	} else {
		store, err = cache.New(&cfg.Cache)
		if err != nil {
			return nil, nil, err
		}
	}
	if cfg.Tracing.Enabled {
		store = cache.NewTracing(store, cfg.Cache.Driver)
	}
	return store, client, nil
}

// reloadLogLevel 配置文件变更时只重新应用日志级别
func reloadLogLevel(cc *config.Config, log logger.Logger) {
	if cc == nil || log == nil {
		return
	}
	level, err := logger.ParseLevel(cc.GetString("log.level"))
	if err != nil {
		log.Warn("ignore invalid log level", zap.Error(err))
		return
	}
	if level != log.Level() {
		log.SetLevel(level)
		log.Info("log level changed", zap.String("level", level.String()))
	}
}
