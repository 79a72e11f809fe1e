package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tiffc/backoffice/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openTestDB 为每个用例创建独立的内存 sqlite 并完成迁移。
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(models.SQLiteDSN(dsn)), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
