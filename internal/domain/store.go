package domain

import (
	"context"
	"errors"
)

// ErrDuplicateKey 仓储写入撞上唯一约束时包装返回，服务层据此给出 Conflict
var ErrDuplicateKey = errors.New("duplicate key")

// Store 聚合仓储；InTx 内的 Store 共享同一事务，fn 返回错误即回滚
type Store interface {
	Users() UserRepository
	Boards() BoardRepository
	Columns() ColumnRepository
	Tasks() TaskRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}
