package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"taskboard/internal/core/config"
	"taskboard/internal/core/server"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/handler"
	mdw "taskboard/internal/transport/http/middleware"
)

// Services 引擎依赖的业务服务
type Services struct {
	Auth    *service.AuthService
	Boards  *service.BoardService
	Columns *service.ColumnService
	Tasks   *service.TaskService
	Admin   *service.AdminService
}

// withDefaults 未配置的限额取默认值，避免零值把所有请求拒掉
func withDefaults(lim config.Limits) config.Limits {
	if lim.RPS <= 0 {
		lim.RPS = 200
	}
	if lim.Burst <= 0 {
		lim.Burst = 400
	}
	if lim.AuthRPS <= 0 {
		lim.AuthRPS = 5
	}
	if lim.AuthBurst <= 0 {
		lim.AuthBurst = 10
	}
	if lim.MaxConcurrent <= 0 {
		lim.MaxConcurrent = 300
	}
	if lim.MaxBodyBytes <= 0 {
		lim.MaxBodyBytes = 1 << 20
	}
	if lim.TimeoutSec <= 0 {
		lim.TimeoutSec = 10
	}
	return lim
}

// base 两个引擎共用的中间件栈
func base(l *zap.Logger, mode string, cors []string, lim config.Limits) *gin.Engine {
	r := server.NewRouter(l, server.Options{Mode: mode, AllowOrigins: cors, OnPanic: mdw.PanicResponse})
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

// NewAPIEngine 用户侧接口，前缀 /api
func NewAPIEngine(l *zap.Logger, cfg *config.Config, mode string, svc Services) *gin.Engine {
	lim := withDefaults(cfg.Limits)
	r := base(l, mode, cfg.CORS.AllowOrigins, lim)

	api := r.Group("/api")
	authed := api.Group("")
	authed.Use(mdw.Auth(svc.Auth, ""))

	reg := &Registry{}
	reg.Register(
		handler.AuthModule{Svc: svc.Auth, Limiter: mdw.RateLimitPerIP(rate.Limit(lim.AuthRPS), lim.AuthBurst)},
		handler.BoardModule{Boards: svc.Boards, Columns: svc.Columns, Tasks: svc.Tasks},
		handler.ColumnModule{Columns: svc.Columns, Tasks: svc.Tasks},
		handler.TaskModule{Tasks: svc.Tasks},
	)
	reg.MountAllAPI(api, authed)
	return r
}
