package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/core/config"
	"taskboard/internal/domain"
	"taskboard/internal/transport/http/handler"
	mdw "taskboard/internal/transport/http/middleware"
)

// NewAdminEngine 管理端接口，前缀 /admin/v1，统一要求 admin 角色；不挂 CORS
func NewAdminEngine(l *zap.Logger, cfg *config.Config, mode string, svc Services) *gin.Engine {
	r := base(l, mode, nil, withDefaults(cfg.Limits))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.Auth(svc.Auth, domain.RoleAdmin))

	reg := &Registry{}
	reg.Register(handler.AdminModule{Admin: svc.Admin})
	reg.MountAllAdmin(admin)
	return r
}
