package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

type ColumnRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *ColumnRepo) Create(ctx context.Context, col *domain.Column) error {
	now := r.now()
	col.CreatedAt, col.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(col).Error; err != nil {
		return wrapWrite("create column", err)
	}
	return nil
}

func (r *ColumnRepo) FindByID(ctx context.Context, id string) (*domain.Column, error) {
	var col domain.Column
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&col).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find column: %w", err)
	}
	return &col, nil
}

func (r *ColumnRepo) ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error) {
	cols := []domain.Column{}
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("column_order ASC").Order("created_at ASC").Order("id ASC").
		Find(&cols).Error
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return cols, nil
}

func (r *ColumnRepo) NextOrder(ctx context.Context, boardID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&domain.Column{}).
		Select("COALESCE(MAX(column_order), -1) + 1").
		Where("board_id = ?", boardID).
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next column order: %w", err)
	}
	return next, nil
}

func (r *ColumnRepo) Update(ctx context.Context, col *domain.Column) error {
	col.UpdatedAt = r.now()
	err := r.db.WithContext(ctx).Model(&domain.Column{}).Where("id = ?", col.ID).Updates(map[string]any{
		"name":         col.Name,
		"column_order": col.Order,
		"updated_at":   col.UpdatedAt,
	}).Error
	if err != nil {
		return wrapWrite("update column", err)
	}
	return nil
}

func (r *ColumnRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&domain.Task{}).Select("id").Where("column_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&domain.TaskTag{}).Error; err != nil {
			return fmt.Errorf("delete column task tags: %w", err)
		}
		if err := tx.Where("column_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return fmt.Errorf("delete column tasks: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Column{}).Error; err != nil {
			return fmt.Errorf("delete column: %w", err)
		}
		return nil
	})
}
