package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

type BoardRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	now := r.now()
	b.CreatedAt, b.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

func (r *BoardRepo) FindByID(ctx context.Context, id string) (*domain.Board, error) {
	var b domain.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find board: %w", err)
	}
	return &b, nil
}

func (r *BoardRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Board, error) {
	boards := []domain.Board{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&boards).Error
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// Update 用 map 写入，空 description 也会覆盖旧值
func (r *BoardRepo) Update(ctx context.Context, b *domain.Board) error {
	b.UpdatedAt = r.now()
	err := r.db.WithContext(ctx).Model(&domain.Board{}).Where("id = ?", b.ID).Updates(map[string]any{
		"name":        b.Name,
		"description": b.Description,
		"updated_at":  b.UpdatedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return nil
}

func (r *BoardRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBoards(tx, []string{id})
	})
}

func (r *BoardRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&domain.Board{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("list owner boards: %w", err)
		}
		return deleteBoards(tx, ids)
	})
}

// deleteBoards 自底向上级联：标签 → 任务 → 列 → 看板
func deleteBoards(tx *gorm.DB, boardIDs []string) error {
	if len(boardIDs) == 0 {
		return nil
	}
	taskIDs := tx.Model(&domain.Task{}).Select("id").Where("board_id IN ?", boardIDs)
	if err := tx.Where("task_id IN (?)", taskIDs).Delete(&domain.TaskTag{}).Error; err != nil {
		return fmt.Errorf("delete board task tags: %w", err)
	}
	if err := tx.Where("board_id IN ?", boardIDs).Delete(&domain.Task{}).Error; err != nil {
		return fmt.Errorf("delete board tasks: %w", err)
	}
	if err := tx.Where("board_id IN ?", boardIDs).Delete(&domain.Column{}).Error; err != nil {
		return fmt.Errorf("delete board columns: %w", err)
	}
	if err := tx.Where("id IN ?", boardIDs).Delete(&domain.Board{}).Error; err != nil {
		return fmt.Errorf("delete boards: %w", err)
	}
	return nil
}
