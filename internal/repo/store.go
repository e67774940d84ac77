package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

// Store 基于 gorm 的 domain.Store 实现；InTx 内部的仓储共用同一个 *gorm.DB 事务
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock 注入时钟（审计时间戳）
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() domain.UserRepository     { return &UserRepo{db: s.db, now: s.now} }
func (s *Store) Boards() domain.BoardRepository   { return &BoardRepo{db: s.db, now: s.now} }
func (s *Store) Columns() domain.ColumnRepository { return &ColumnRepo{db: s.db, now: s.now} }
func (s *Store) Tasks() domain.TaskRepository     { return &TaskRepo{db: s.db, now: s.now} }

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})
}

// Migrate 建表；顺序与外键依赖一致
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Board{},
		&domain.Column{},
		&domain.Task{},
		&domain.TaskTag{},
	)
}

// IsDupKey 唯一约束冲突；TranslateError 未覆盖的驱动按各自的错误文本兜底
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, domain.ErrDuplicateKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "duplicate entry") // mysql
}

// wrapWrite 唯一约束冲突额外挂上 domain.ErrDuplicateKey
func wrapWrite(op string, err error) error {
	if IsDupKey(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
