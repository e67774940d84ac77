// Package app 装配两个二进制共用的依赖：数据库、缓存、JWT 与各业务服务。
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"taskboard/internal/core/auth"
	"taskboard/internal/core/cache"
	"taskboard/internal/core/config"
	"taskboard/internal/core/database"
	"taskboard/internal/core/logger"
	"taskboard/internal/repo"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/router"
)

type App struct {
	DB       *gorm.DB
	Cache    *cache.Cache // 未配置 redis 时为 nil
	Services router.Services
	closers  []func() error
}

// New 打开数据库（按需迁移）、连接 redis（可选）并构造服务
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		LogWriter:          logger.ToWriter(l.Named("gorm"), zapcore.InfoLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a := &App{DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	authOpts := []service.AuthOption{service.WithAdminUsernames(cfg.Auth.AdminUsernames)}
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Ping(pctx)
		cancel()
		if err != nil {
			// redis 只做加速，连不上就退化为直查库
			l.Warn("redis unavailable, user cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			a.Cache = c
			a.closers = append(a.closers, c.Close)
			authOpts = append(authOpts, service.WithUserCache(c, time.Duration(cfg.Redis.UserTTLSec)*time.Second))
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	store := repo.NewStore(db)
	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
	authSvc := service.NewAuthService(store, jwter, l.Named("auth"), authOpts...)
	a.Services = router.Services{
		Auth:    authSvc,
		Boards:  service.NewBoardService(store, l.Named("board")),
		Columns: service.NewColumnService(store, l.Named("column")),
		Tasks:   service.NewTaskService(store, l.Named("task")),
		Admin:   service.NewAdminService(store, l.Named("admin"), authSvc),
	}
	return a, nil
}

// Close 逆序释放
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// GinMode prod 环境用 release，其余 debug
func GinMode(env string) string {
	switch env {
	case "prod", "production":
		return gin.ReleaseMode
	default:
		return gin.DebugMode
	}
}
