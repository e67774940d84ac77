package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/ez"
)

type ColumnModule struct {
	Columns *service.ColumnService
	Tasks   *service.TaskService
}

func (ColumnModule) Priority() int { return 30 }

func (m ColumnModule) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Column]{
		Method: http.MethodGet,
		Path:   "/columns/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.Column, error) {
			return m.Columns.Get(c.Request.Context(), c.Param("id"), who)
		},
	})
	ez.RegisterAction(e, ez.Action[service.ColumnInput, *domain.Column]{
		Method: http.MethodPut,
		Path:   "/columns/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, in *service.ColumnInput) (*domain.Column, error) {
			return m.Columns.Update(c.Request.Context(), c.Param("id"), *in, who)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/columns/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (message, error) {
			if err := m.Columns.Delete(c.Request.Context(), c.Param("id"), who); err != nil {
				return message{}, err
			}
			return message{Message: "column deleted"}, nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []taskView]{
		Method: http.MethodGet,
		Path:   "/columns/:id/tasks",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) ([]taskView, error) {
			ts, err := m.Tasks.ListByColumn(c.Request.Context(), c.Param("id"), who)
			if err != nil {
				return nil, err
			}
			return toTaskViews(ts), nil
		},
	})
}
