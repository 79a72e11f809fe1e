package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func isPostgresDialect(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// latestPerPairSQL 构建“每个 (来源, 币种) 取最新一条”的查询。
// postgres 使用 DISTINCT ON，其他方言使用 ROW_NUMBER 窗口函数。
func latestPerPairSQL(dialect, table string) string {
	const columns = "id, source, currency, rate, crawled_at, created_at"
	if isPostgresDialect(dialect) {
		return fmt.Sprintf(
			"SELECT DISTINCT ON (source, currency) %s FROM %s ORDER BY source, currency, crawled_at DESC, id DESC",
			columns, table,
		)
	}
	return fmt.Sprintf(
		"SELECT %s FROM (SELECT %s, ROW_NUMBER() OVER (PARTITION BY source, currency ORDER BY crawled_at DESC, id DESC) AS rn FROM %s) ranked WHERE rn = 1 ORDER BY source, currency",
		columns, columns, table,
	)
}
