package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tiffc/backoffice/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(models.SQLiteDSN(dsn)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, title string) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:            title,
		PriceJpyOriginal: models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		URL:              "https://shop.example.com/" + strings.ReplaceAll(title, " ", "-"),
		ImageURLs:        models.StringArray{"https://img.example.com/" + title + ".jpg"},
	}
	require.NoError(t, db.WithContext(context.Background()).Create(product).Error)
	return product
}

func strPtr(v string) *string {
	return &v
}
