package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

type UserRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return wrapWrite("create user", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, col, val string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(col+" = ?", val).First(&u).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", col, err)
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

// List 管理端分页；q 按 username/email 模糊匹配
func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users := make([]domain.User, 0, limit)
	if err := tx.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Delete 只删用户行；名下看板由调用方在同一事务中先行删除
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
