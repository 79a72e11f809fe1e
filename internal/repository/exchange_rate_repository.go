package repository

import (
	"context"
	"strings"

	"github.com/tiffc/backoffice/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExchangeRateRepository 汇率数据访问接口
type ExchangeRateRepository interface {
	BulkCreate(ctx context.Context, rates []models.ExchangeRate) error
	ListLatestBySource(ctx context.Context, source models.ExchangeRateSource, limit int) ([]models.ExchangeRate, error)
	ListLatestPerPair(ctx context.Context) ([]models.ExchangeRate, error)
	ListHistory(ctx context.Context, filter ExchangeRateHistoryFilter) ([]models.ExchangeRate, error)
}

// GormExchangeRateRepository GORM 实现
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewExchangeRateRepository 创建汇率仓库
func NewExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormExchangeRateRepository) WithTx(tx *gorm.DB) *GormExchangeRateRepository {
	if tx == nil {
		return r
	}
	return &GormExchangeRateRepository{db: tx}
}

// BulkCreate 在单个事务内批量写入，同一 (来源, 币种, 时间) 重复写入时覆盖汇率
func (r *GormExchangeRateRepository) BulkCreate(ctx context.Context, rates []models.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "currency"}, {Name: "crawled_at"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate"}),
		}).Create(&rates).Error
	})
}

// ListLatestBySource 获取指定来源最近的记录，按爬取时间倒序
func (r *GormExchangeRateRepository) ListLatestBySource(ctx context.Context, source models.ExchangeRateSource, limit int) ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	query := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order("crawled_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// ListLatestPerPair 每个 (来源, 币种) 只返回爬取时间最新的一条
func (r *GormExchangeRateRepository) ListLatestPerPair(ctx context.Context) ([]models.ExchangeRate, error) {
	rates := make([]models.ExchangeRate, 0)
	sql := latestPerPairSQL(dbDialectName(r.db), models.ExchangeRate{}.TableName())
	if err := r.db.WithContext(ctx).Raw(sql).Scan(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// ListHistory 获取某来源某币种自 since 起的记录，按爬取时间倒序
func (r *GormExchangeRateRepository) ListHistory(ctx context.Context, filter ExchangeRateHistoryFilter) ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	query := r.db.WithContext(ctx).
		Where("source = ?", filter.Source).
		Where("currency = ?", strings.TrimSpace(filter.Currency))
	if !filter.Since.IsZero() {
		query = query.Where("crawled_at >= ?", filter.Since)
	}
	if err := query.Order("crawled_at DESC").Order("id DESC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
