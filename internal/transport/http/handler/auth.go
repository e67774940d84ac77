package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/ez"
)

// AuthModule /auth/register、/auth/login（按 IP 限流）与 /auth/me
type AuthModule struct {
	Svc     *service.AuthService
	Limiter gin.HandlerFunc // 可为 nil
}

func (AuthModule) Priority() int { return 10 }

func (m AuthModule) MountAPI(public, authed *gin.RouterGroup) {
	g := public.Group("/auth")
	if m.Limiter != nil {
		g.Use(m.Limiter)
	}
	pub := ez.New(g)

	ez.RegisterAction(pub, ez.Action[service.RegisterInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Identity, in *service.RegisterInput) (*service.AuthResult, error) {
			return m.Svc.Register(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(pub, ez.Action[service.LoginInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Identity, in *service.LoginInput) (*service.AuthResult, error) {
			return m.Svc.Login(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(ez.New(authed), ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.User, error) {
			return m.Svc.Me(c.Request.Context(), who)
		},
	})
}
