package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// OpenDialector 按驱动名构建 gorm 方言
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(SQLiteDSN(dsn)), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// SQLiteDSN 为 sqlite 连接串开启外键约束，每个新连接都会执行该 pragma
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// InitDB 初始化数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	dialector, err := OpenDialector(driver, dsn)
	if err != nil {
		return err
	}
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 将唯一键/外键冲突统一翻译为 gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	applyDBPool(sqlDB, pool)
	return nil
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AllModels 返回需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Product{},
		&ProductVariant{},
		&Order{},
		&OrderItem{},
		&OrderItemVariant{},
		&ExchangeRate{},
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate 对指定连接执行迁移
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.AutoMigrate(AllModels()...)
}
