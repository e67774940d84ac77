package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/transport/http/ez"
)

// taskView 对外的任务表示；dueDate 为 YYYY-MM-DD 或 null
type taskView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Tags        []string        `json:"tags"`
	DueDate     *string         `json:"dueDate"`
	Order       int             `json:"order"`
	ColumnID    string          `json:"columnId"`
	BoardID     string          `json:"boardId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toTaskView(t *domain.Task) taskView {
	v := taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Tags:        t.Tags,
		Order:       t.Order,
		ColumnID:    t.ColumnID,
		BoardID:     t.BoardID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if d := t.DueDateString(); d != "" {
		v.DueDate = &d
	}
	return v
}

func toTaskViews(ts []domain.Task) []taskView {
	out := make([]taskView, 0, len(ts))
	for i := range ts {
		out = append(out, toTaskView(&ts[i]))
	}
	return out
}

type TaskModule struct {
	Tasks *service.TaskService
}

func (TaskModule) Priority() int { return 40 }

func (m TaskModule) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed)

	ez.RegisterAction(e, ez.Action[service.CreateTaskInput, taskView]{
		Method: http.MethodPost,
		Path:   "/tasks",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, in *service.CreateTaskInput) (taskView, error) {
			t, err := m.Tasks.Create(c.Request.Context(), *in, who)
			if err != nil {
				return taskView{}, err
			}
			return toTaskView(t), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, taskView]{
		Method: http.MethodGet,
		Path:   "/tasks/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (taskView, error) {
			t, err := m.Tasks.Get(c.Request.Context(), c.Param("id"), who)
			if err != nil {
				return taskView{}, err
			}
			return toTaskView(t), nil
		},
	})
	// PUT 与 PATCH 同为部分更新
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		ez.RegisterAction(e, ez.Action[service.UpdateTaskInput, taskView]{
			Method: method,
			Path:   "/tasks/:id",
			Binder: ez.BindJSON,
			Auth:   true,
			Handler: func(c *gin.Context, who domain.Identity, in *service.UpdateTaskInput) (taskView, error) {
				t, err := m.Tasks.Update(c.Request.Context(), c.Param("id"), *in, who)
				if err != nil {
					return taskView{}, err
				}
				return toTaskView(t), nil
			},
		})
	}
	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/tasks/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (message, error) {
			if err := m.Tasks.Delete(c.Request.Context(), c.Param("id"), who); err != nil {
				return message{}, err
			}
			return message{Message: "task deleted"}, nil
		},
	})
}
