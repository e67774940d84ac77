package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/domain"
	"taskboard/pkg/patch"
	"taskboard/pkg/utils"
)

type CreateTaskInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=1000"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=64"`
	Order       *int     `json:"order" validate:"omitempty,gte=0"`
	BoardID     string   `json:"boardId" validate:"required"`
	ColumnID    string   `json:"columnId" validate:"required"`
}

// UpdateTaskInput 部分更新：缺省字段不动，显式 null 仅对 description/dueDate/tags 表示清空
type UpdateTaskInput struct {
	Title       patch.Field[string]   `json:"title"`
	Description patch.Field[string]   `json:"description"`
	Priority    patch.Field[string]   `json:"priority"`
	DueDate     patch.Field[string]   `json:"dueDate"`
	Tags        patch.Field[[]string] `json:"tags"`
	Order       patch.Field[int]      `json:"order"`
	ColumnID    patch.Field[string]   `json:"columnId"`
}

type TaskService struct {
	store domain.Store
	log   *zap.Logger
}

func NewTaskService(store domain.Store, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{store: store, log: log}
}

func (s *TaskService) Get(ctx context.Context, id string, caller domain.Identity) (*domain.Task, error) {
	return ownedTask(ctx, s.store, id, caller)
}

func (s *TaskService) ListByBoard(ctx context.Context, boardID string, caller domain.Identity) ([]domain.Task, error) {
	if _, err := ownedBoard(ctx, s.store, boardID, caller); err != nil {
		return nil, err
	}
	ts, err := s.store.Tasks().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, domain.Internal("list tasks", err)
	}
	return ts, nil
}

func (s *TaskService) ListByColumn(ctx context.Context, columnID string, caller domain.Identity) ([]domain.Task, error) {
	if _, err := ownedColumn(ctx, s.store, columnID, caller); err != nil {
		return nil, err
	}
	ts, err := s.store.Tasks().ListByColumn(ctx, columnID)
	if err != nil {
		return nil, domain.Internal("list tasks", err)
	}
	return ts, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, caller domain.Identity) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Tags = normalizeTags(in.Tags)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	prio := domain.PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		p, err := domain.ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		prio = p
	}
	due, err := domain.ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          utils.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    prio,
		DueDate:     due,
		Tags:        in.Tags,
	}
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := ownedBoard(ctx, tx, in.BoardID, caller); err != nil {
			return err
		}
		col, err := tx.Columns().FindByID(ctx, in.ColumnID)
		if err != nil {
			return err
		}
		if col == nil {
			return domain.NotFound("column not found")
		}
		if col.BoardID != in.BoardID {
			return domain.Validation("column does not belong to the given board")
		}
		t.ColumnID = col.ID
		t.BoardID = col.BoardID
		if in.Order != nil {
			t.Order = *in.Order
		} else if t.Order, err = tx.Tasks().NextOrder(ctx, col.ID); err != nil {
			return err
		}
		return tx.Tasks().Create(ctx, t)
	})
	if err != nil {
		return nil, passthrough("create task", err)
	}
	return t, nil
}

// Update 改列时 board 随目标列重新推导；目标列须属于调用方的看板
func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput, caller domain.Identity) (*domain.Task, error) {
	var out *domain.Task
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		t, err := ownedTask(ctx, tx, id, caller)
		if err != nil {
			return err
		}
		if err := applyTaskPatch(t, in); err != nil {
			return err
		}
		if in.ColumnID.Set {
			if in.ColumnID.Null || strings.TrimSpace(in.ColumnID.Value) == "" {
				return domain.Validation("columnId cannot be empty")
			}
			if in.ColumnID.Value != t.ColumnID {
				col, err := ownedColumn(ctx, tx, in.ColumnID.Value, caller)
				if err != nil {
					return err
				}
				t.ColumnID = col.ID
				t.BoardID = col.BoardID
				if !in.Order.Set {
					if t.Order, err = tx.Tasks().NextOrder(ctx, col.ID); err != nil {
						return err
					}
				}
			}
		}
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, passthrough("update task", err)
	}
	return out, nil
}

// applyTaskPatch 合并后整体按 CreateTaskInput 的规则再校验一次
func applyTaskPatch(t *domain.Task, in UpdateTaskInput) error {
	if in.Title.Set {
		t.Title = strings.TrimSpace(in.Title.Value)
	}
	if in.Description.Set {
		t.Description = strings.TrimSpace(in.Description.Value)
	}
	if in.Priority.Set {
		if in.Priority.Null {
			return domain.Validation("priority cannot be null")
		}
		p, err := domain.ParsePriority(in.Priority.Value)
		if err != nil {
			return err
		}
		t.Priority = p
	}
	if in.DueDate.Set {
		due, err := domain.ParseDate(in.DueDate.Value)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	if in.Tags.Set {
		t.Tags = normalizeTags(in.Tags.Value)
	}
	if in.Order.Set {
		if in.Order.Null {
			return domain.Validation("order cannot be null")
		}
		t.Order = in.Order.Value
	}
	order := t.Order
	return validateStruct(CreateTaskInput{
		Title:       t.Title,
		Description: t.Description,
		Tags:        t.Tags,
		Order:       &order,
		BoardID:     t.BoardID,
		ColumnID:    t.ColumnID,
	})
}

// normalizeTags 去首尾空白、丢弃空串；保留顺序与重复
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func (s *TaskService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	t, err := ownedTask(ctx, s.store, id, caller)
	if err != nil {
		return err
	}
	if err := s.store.Tasks().Delete(ctx, t.ID); err != nil {
		return domain.Internal("delete task", err)
	}
	return nil
}
