package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/domain"
	"taskboard/pkg/utils"
)

// ColumnInput order 缺省时：创建追加到末尾，更新保持不变
type ColumnInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Order *int   `json:"order" validate:"omitempty,gte=0"`
}

type ColumnService struct {
	store domain.Store
	log   *zap.Logger
}

func NewColumnService(store domain.Store, log *zap.Logger) *ColumnService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ColumnService{store: store, log: log}
}

func (s *ColumnService) ListByBoard(ctx context.Context, boardID string, caller domain.Identity) ([]domain.Column, error) {
	if _, err := ownedBoard(ctx, s.store, boardID, caller); err != nil {
		return nil, err
	}
	cols, err := s.store.Columns().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, domain.Internal("list columns", err)
	}
	return cols, nil
}

func (s *ColumnService) Get(ctx context.Context, id string, caller domain.Identity) (*domain.Column, error) {
	return ownedColumn(ctx, s.store, id, caller)
}

func (s *ColumnService) Create(ctx context.Context, boardID string, in ColumnInput, caller domain.Identity) (*domain.Column, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	var col *domain.Column
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := ownedBoard(ctx, tx, boardID, caller); err != nil {
			return err
		}
		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			n, err := tx.Columns().NextOrder(ctx, boardID)
			if err != nil {
				return err
			}
			order = n
		}
		col = &domain.Column{ID: utils.NewID(), Name: in.Name, Order: order, BoardID: boardID}
		return tx.Columns().Create(ctx, col)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.Conflict("column order already taken on this board")
		}
		return nil, passthrough("create column", err)
	}
	return col, nil
}

func (s *ColumnService) Update(ctx context.Context, id string, in ColumnInput, caller domain.Identity) (*domain.Column, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	col, err := ownedColumn(ctx, s.store, id, caller)
	if err != nil {
		return nil, err
	}
	col.Name = in.Name
	if in.Order != nil {
		col.Order = *in.Order
	}
	if err := s.store.Columns().Update(ctx, col); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.Conflict("column order already taken on this board")
		}
		return nil, domain.Internal("update column", err)
	}
	return col, nil
}

// Delete 级联删除列内任务
func (s *ColumnService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	col, err := ownedColumn(ctx, s.store, id, caller)
	if err != nil {
		return err
	}
	if err := s.store.Columns().Delete(ctx, col.ID); err != nil {
		return domain.Internal("delete column", err)
	}
	s.log.Info("column deleted", zap.String("columnId", col.ID), zap.String("boardId", col.BoardID))
	return nil
}
