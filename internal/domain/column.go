package domain

import (
	"context"
	"time"
)

type Column struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Order     int       `gorm:"column:column_order;not null;uniqueIndex:idx_columns_board_order,priority:2" json:"order"`
	BoardID   string    `gorm:"size:32;not null;uniqueIndex:idx_columns_board_order,priority:1" json:"boardId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Column) TableName() string { return "columns" }

type ColumnRepository interface {
	Create(ctx context.Context, col *Column) error
	FindByID(ctx context.Context, id string) (*Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]Column, error)
	// NextOrder 返回 max(order)+1，空看板为 0
	NextOrder(ctx context.Context, boardID string) (int, error)
	// Update 只写 name/order/updated_at；board 不可变
	Update(ctx context.Context, col *Column) error
	// Delete 级联删除任务与标签
	Delete(ctx context.Context, id string) error
}
