// Package testutil 提供测试用的内存数据库
package testutil

import (
	"io"
	"testing"

	"gorm.io/gorm"

	"taskboard/internal/core/database"
	"taskboard/internal/repo"
)

// NewDB 每个测试一个独立的内存 sqlite；单连接保证同一个库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
		LogWriter:    io.Discard,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore 内存库 + 仓储
func NewStore(t testing.TB, opts ...repo.Option) *repo.Store {
	t.Helper()
	return repo.NewStore(NewDB(t), opts...)
}

// Count 统计某表行数，用于断言级联删除没有残留
func Count(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
