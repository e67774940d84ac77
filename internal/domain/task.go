package domain

import (
	"context"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ParsePriority 大小写不敏感
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", Validation("priority must be one of LOW, MEDIUM, HIGH, URGENT")
}

const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD；空串表示未设置
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, Validation("dueDate must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}

type Task struct {
	ID          string     `gorm:"primaryKey;size:32"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"size:1000"`
	Priority    Priority   `gorm:"size:16;not null;default:MEDIUM"`
	DueDate     *time.Time `gorm:"column:due_date;type:date"`
	Order       int        `gorm:"column:task_order;not null"`
	ColumnID    string     `gorm:"size:32;not null;index"`
	// BoardID 冗余自 column.board_id，仅用于按看板单表查询；改列时必须同事务重写
	BoardID   string    `gorm:"size:32;not null;index"`
	Tags      []string  `gorm:"-"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (Task) TableName() string { return "tasks" }

// DueDateString 未设置时返回空串
func (t *Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// TaskTag task_tags 子表，position 保持插入顺序
type TaskTag struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TaskID   string `gorm:"size:32;not null;index"`
	Position int    `gorm:"not null"`
	Tag      string `gorm:"size:64;not null"`
}

func (TaskTag) TableName() string { return "task_tags" }

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	ListByBoard(ctx context.Context, boardID string) ([]Task, error)
	ListByColumn(ctx context.Context, columnID string) ([]Task, error)
	NextOrder(ctx context.Context, columnID string) (int, error)
	// Update 覆盖所有可变列并整体替换标签
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
