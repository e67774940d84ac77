package domain

import (
	"context"
	"time"
)

// DefaultColumns 新建看板时同步创建，order 依次为 0,1,2
var DefaultColumns = []string{"To Do", "In Progress", "Done"}

type Board struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	OwnerID     string    `gorm:"size:32;not null;index" json:"ownerId"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Board) TableName() string { return "boards" }

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	FindByID(ctx context.Context, id string) (*Board, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Board, error)
	// Update 只写 name/description/updated_at；owner 不可变
	Update(ctx context.Context, b *Board) error
	// Delete 级联删除列、任务、标签
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
