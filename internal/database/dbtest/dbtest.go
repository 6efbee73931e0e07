// Package dbtest 提供测试用的内存数据库
package dbtest

import (
	"fmt"
	"testing"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New 为单个测试创建独立的内存 sqlite 库并完成迁移
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
