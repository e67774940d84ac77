package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

type TaskRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return insertTags(tx, t.ID, t.Tags)
	})
}

func (r *TaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	db := r.db.WithContext(ctx)
	err := db.Where("id = ?", id).First(&t).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	tasks := []domain.Task{t}
	if err := attachTags(db, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (r *TaskRepo) ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
	return r.list(ctx, "board_id", boardID)
}

func (r *TaskRepo) ListByColumn(ctx context.Context, columnID string) ([]domain.Task, error) {
	return r.list(ctx, "column_id", columnID)
}

func (r *TaskRepo) list(ctx context.Context, col, val string) ([]domain.Task, error) {
	db := r.db.WithContext(ctx)
	tasks := []domain.Task{}
	err := db.Where(col+" = ?", val).
		Order("task_order ASC").Order("created_at ASC").Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks by %s: %w", col, err)
	}
	if err := attachTags(db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepo) NextOrder(ctx context.Context, columnID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("COALESCE(MAX(task_order), -1) + 1").
		Where("column_id = ?", columnID).
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next task order: %w", err)
	}
	return next, nil
}

// Update 行与标签在同一事务内写入；column_id 与 board_id 总是一起落库
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = r.now()
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Task{}).Where("id = ?", t.ID).Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"priority":    t.Priority,
			"due_date":    t.DueDate,
			"task_order":  t.Order,
			"column_id":   t.ColumnID,
			"board_id":    t.BoardID,
			"updated_at":  t.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := tx.Where("task_id = ?", t.ID).Delete(&domain.TaskTag{}).Error; err != nil {
			return fmt.Errorf("clear task tags: %w", err)
		}
		return insertTags(tx, t.ID, t.Tags)
	})
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.TaskTag{}).Error; err != nil {
			return fmt.Errorf("delete task tags: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

func insertTags(tx *gorm.DB, taskID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]domain.TaskTag, len(tags))
	for i, tag := range tags {
		rows[i] = domain.TaskTag{TaskID: taskID, Position: i, Tag: tag}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert task tags: %w", err)
	}
	return nil
}

// attachTags 一次查询取回所有任务的标签，按 position 还原顺序
func attachTags(db *gorm.DB, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
		tasks[i].Tags = []string{}
	}
	var rows []domain.TaskTag
	err := db.Where("task_id IN ?", ids).
		Order("task_id").Order("position").Order("id").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("load task tags: %w", err)
	}
	byTask := make(map[string][]string, len(tasks))
	for _, row := range rows {
		byTask[row.TaskID] = append(byTask[row.TaskID], row.Tag)
	}
	for i := range tasks {
		if tags, ok := byTask[tasks[i].ID]; ok {
			tasks[i].Tags = tags
		}
	}
	return nil
}
