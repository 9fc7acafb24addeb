package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"civicsync/internal/analytics"
	"civicsync/internal/core/auth"
	"civicsync/internal/core/cache"
	"civicsync/internal/core/config"
	"civicsync/internal/core/database"
	"civicsync/internal/core/logger"
	"civicsync/internal/core/server"
	"civicsync/internal/domain"
	"civicsync/internal/query"
	"civicsync/internal/store/gormstore"
	"civicsync/internal/store/memory"
	"civicsync/internal/transport/http/handler"
	"civicsync/internal/transport/http/router"
	"civicsync/internal/upload"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	var log *zap.Logger
	var cleanup func()
	if cfg.Log.File != "" {
		log, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
			cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, true)
	} else {
		log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	defer cleanup()

	// 存储：默认进程内集合（带示例数据），可切 postgres/mysql
	st := mustOpenStore(cfg, log)

	// 上传目录
	saver, err := upload.NewSaver(cfg.Upload.Dir)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.TTLDays) * 24 * time.Hour,
	}

	// 模块装配
	eng := query.New(st)
	agg := analytics.New(st)
	analyticsMod := handler.NewAnalytics(st, agg)
	if cfg.Redis.Addr != "" && cfg.Redis.AnalyticsTTLSec > 0 {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, analytics cache disabled", zap.Error(err))
		} else {
			analyticsMod = analyticsMod.WithCache(c, time.Duration(cfg.Redis.AnalyticsTTLSec)*time.Second)
			log.Info("analytics cache enabled", zap.String("redis", cfg.Redis.Addr))
		}
	}

	router.Register(handler.NewHealth())
	router.Register(handler.NewAuth(st, jwter))
	router.Register(handler.NewIssues(st, eng, saver))
	router.Register(analyticsMod)

	r := router.NewAPIEngine(log, jwter, cfg.Upload.Dir)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("civicsync api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/api/health"),
		zap.String("store", cfg.Store.Driver),
	)
	if cfg.Store.Driver == "memory" {
		log.Debug("sample credentials",
			zap.String("john", "john@example.com / password123"),
			zap.String("jane", "jane@example.com / password123"),
		)
	}

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("civicsync api start FAILED", zap.Error(err))
		}
	}()
	log.Info("civicsync api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("civicsync api stopped gracefully")
}

func mustOpenStore(cfg *config.Config, l *zap.Logger) domain.Store {
	if cfg.Store.Driver == "" || cfg.Store.Driver == "memory" {
		st := memory.New()
		st.Seed()
		l.Info("in-memory store seeded")
		return st
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.Store.Driver,
		DSN:                cfg.Store.DSN,
		Username:           cfg.Store.Username,
		Password:           cfg.Store.Password,
		MaxOpenConns:       cfg.Store.MaxOpenConns,
		MaxIdleConns:       cfg.Store.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
	})
	if err != nil {
		l.Fatal("store open", zap.Error(err))
	}
	st := gormstore.New(db)
	if cfg.Store.AutoMigrate {
		if err := st.AutoMigrate(); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	l.Info("database connected", zap.String("driver", cfg.Store.Driver))
	return st
}
