package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/ez"
)

type listUsersQuery struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 username/email 模糊搜
}

type deletedID struct {
	ID string `json:"id"`
}

// AdminModule 管理端用户列表与级联删除
type AdminModule struct {
	Admin *service.AdminService
}

func (AdminModule) Priority() int { return 10 }

func (m AdminModule) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	ez.RegisterAction(e, ez.Action[listUsersQuery, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ domain.Identity, in *listUsersQuery) (*service.UserPage, error) {
			return m.Admin.ListUsers(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, deletedID]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (deletedID, error) {
			id := c.Param("id")
			if err := m.Admin.DeleteUser(c.Request.Context(), id, who); err != nil {
				return deletedID{}, err
			}
			return deletedID{ID: id}, nil
		},
	})
}
