package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/ez"
)

type message struct {
	Message string `json:"message"`
}

// BoardModule /boards 以及看板下的列、任务列表
type BoardModule struct {
	Boards  *service.BoardService
	Columns *service.ColumnService
	Tasks   *service.TaskService
}

func (BoardModule) Priority() int { return 20 }

func (m BoardModule) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Board]{
		Method: http.MethodGet,
		Path:   "/boards",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) ([]domain.Board, error) {
			return m.Boards.List(c.Request.Context(), who)
		},
	})
	ez.RegisterAction(e, ez.Action[service.BoardInput, *domain.Board]{
		Method: http.MethodPost,
		Path:   "/boards",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, in *service.BoardInput) (*domain.Board, error) {
			return m.Boards.Create(c.Request.Context(), *in, who)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Board]{
		Method: http.MethodGet,
		Path:   "/boards/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.Board, error) {
			return m.Boards.Get(c.Request.Context(), c.Param("id"), who)
		},
	})
	ez.RegisterAction(e, ez.Action[service.BoardInput, *domain.Board]{
		Method: http.MethodPut,
		Path:   "/boards/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, in *service.BoardInput) (*domain.Board, error) {
			return m.Boards.Update(c.Request.Context(), c.Param("id"), *in, who)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/boards/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (message, error) {
			if err := m.Boards.Delete(c.Request.Context(), c.Param("id"), who); err != nil {
				return message{}, err
			}
			return message{Message: "board deleted"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Column]{
		Method: http.MethodGet,
		Path:   "/boards/:id/columns",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) ([]domain.Column, error) {
			return m.Columns.ListByBoard(c.Request.Context(), c.Param("id"), who)
		},
	})
	ez.RegisterAction(e, ez.Action[service.ColumnInput, *domain.Column]{
		Method: http.MethodPost,
		Path:   "/boards/:id/columns",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, in *service.ColumnInput) (*domain.Column, error) {
			return m.Columns.Create(c.Request.Context(), c.Param("id"), *in, who)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []taskView]{
		Method: http.MethodGet,
		Path:   "/boards/:id/tasks",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) ([]taskView, error) {
			ts, err := m.Tasks.ListByBoard(c.Request.Context(), c.Param("id"), who)
			if err != nil {
				return nil, err
			}
			return toTaskViews(ts), nil
		},
	})
}
