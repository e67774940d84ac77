package service

import (
	"context"
	"errors"

	"taskboard/internal/domain"
)

// ownedBoard 所有权闸门：看板不存在 NotFound，不是调用方的 Forbidden
func ownedBoard(ctx context.Context, s domain.Store, boardID string, caller domain.Identity) (*domain.Board, error) {
	b, err := s.Boards().FindByID(ctx, boardID)
	if err != nil {
		return nil, domain.Internal("load board", err)
	}
	if b == nil {
		return nil, domain.NotFound("board not found")
	}
	if b.OwnerID != caller.UserID {
		return nil, domain.Forbidden("you do not have access to this board")
	}
	return b, nil
}

// ownedColumn 列存在且所属看板归调用方
func ownedColumn(ctx context.Context, s domain.Store, columnID string, caller domain.Identity) (*domain.Column, error) {
	col, err := s.Columns().FindByID(ctx, columnID)
	if err != nil {
		return nil, domain.Internal("load column", err)
	}
	if col == nil {
		return nil, domain.NotFound("column not found")
	}
	if _, err := ownedBoard(ctx, s, col.BoardID, caller); err != nil {
		return nil, err
	}
	return col, nil
}

// ownedTask 任务存在且所属看板归调用方
func ownedTask(ctx context.Context, s domain.Store, taskID string, caller domain.Identity) (*domain.Task, error) {
	t, err := s.Tasks().FindByID(ctx, taskID)
	if err != nil {
		return nil, domain.Internal("load task", err)
	}
	if t == nil {
		return nil, domain.NotFound("task not found")
	}
	if _, err := ownedBoard(ctx, s, t.BoardID, caller); err != nil {
		return nil, err
	}
	return t, nil
}

// passthrough InTx 里已是 *domain.Error 的原样返回，其余包成 Internal
func passthrough(msg string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(msg, err)
}
