package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserForgetter 用户删除后清理鉴权缓存
type UserForgetter interface {
	ForgetUser(ctx context.Context, userID string)
}

type UserPage struct {
	Items  []domain.User `json:"items"`
	Total  int64         `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

type AdminService struct {
	store  domain.Store
	log    *zap.Logger
	forget UserForgetter
}

func NewAdminService(store domain.Store, log *zap.Logger, forget UserForgetter) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{store: store, log: log, forget: forget}
}

func (s *AdminService) ListUsers(ctx context.Context, q string, offset, limit int) (*UserPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	items, total, err := s.store.Users().List(ctx, strings.TrimSpace(q), offset, limit)
	if err != nil {
		return nil, domain.Internal("list users", err)
	}
	return &UserPage{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

// DeleteUser 连同其看板（及列、任务）一并删除
func (s *AdminService) DeleteUser(ctx context.Context, id string, caller domain.Identity) error {
	if !caller.IsAdmin() {
		return domain.Forbidden("admin role required")
	}
	if id == caller.UserID {
		return domain.Validation("admins cannot delete themselves")
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Boards().DeleteByOwner(ctx, id); err != nil {
			return err
		}
		ok, err := tx.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("user not found")
		}
		return nil
	})
	if err != nil {
		return passthrough("delete user", err)
	}
	if s.forget != nil {
		s.forget.ForgetUser(ctx, id)
	}
	s.log.Info("user deleted", zap.String("userId", id), zap.String("by", caller.UserID))
	return nil
}
