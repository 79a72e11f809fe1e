package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tiffc/backoffice/internal/cache"
	"github.com/tiffc/backoffice/internal/constants"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"
)

const defaultProductSummaryTTL = 10 * time.Minute

// ProductSummaryLoader 商品摘要读取，先查缓存再批量查库
type ProductSummaryLoader struct {
	repo repository.ProductRepository
	ttl  time.Duration
}

// NewProductSummaryLoader 创建商品摘要读取器
func NewProductSummaryLoader(repo repository.ProductRepository, ttl time.Duration) *ProductSummaryLoader {
	if ttl <= 0 {
		ttl = defaultProductSummaryTTL
	}
	return &ProductSummaryLoader{repo: repo, ttl: ttl}
}

// Load 返回找到的摘要与读取失败的商品 ID；商品不存在不算失败
func (l *ProductSummaryLoader) Load(ctx context.Context, ids []uint) (map[uint]*models.ProductSummary, []uint) {
	summaries := make(map[uint]*models.ProductSummary, len(ids))
	misses := make([]uint, 0, len(ids))
	for _, id := range ids {
		var summary models.ProductSummary
		hit, err := cache.GetJSON(ctx, productSummaryKey(id), &summary)
		if err != nil {
			logger.Ctx(ctx).Debugw("product_summary_cache_get_failed", "product_id", id, "error", err)
		}
		if hit && err == nil {
			summaries[id] = &summary
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return summaries, nil
	}

	products, err := l.repo.ListByIDs(ctx, misses)
	if err != nil {
		logger.Ctx(ctx).Warnw("product_summary_load_failed", "product_ids", misses, "error", err)
		return summaries, misses
	}
	for i := range products {
		summary := products[i].Summary()
		summaries[products[i].ID] = summary
		if err := cache.SetJSON(ctx, productSummaryKey(products[i].ID), summary, l.ttl); err != nil {
			logger.Ctx(ctx).Debugw("product_summary_cache_set_failed", "product_id", products[i].ID, "error", err)
		}
	}
	return summaries, nil
}

// Invalidate 删除商品摘要缓存
func (l *ProductSummaryLoader) Invalidate(ctx context.Context, id uint) {
	if err := cache.Del(ctx, productSummaryKey(id)); err != nil {
		logger.Ctx(ctx).Warnw("product_summary_cache_invalidate_failed", "product_id", id, "error", err)
	}
}

func productSummaryKey(id uint) string {
	return fmt.Sprintf(constants.CacheKeyProductSummaryFmt, id)
}
