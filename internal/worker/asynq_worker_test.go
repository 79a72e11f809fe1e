package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/crawler"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/provider"
	"github.com/tiffc/backoffice/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubCrawler struct {
	source models.ExchangeRateSource
	rates  []crawler.CrawledRate
	err    error
}

func (s stubCrawler) Source() models.ExchangeRateSource { return s.source }

func (s stubCrawler) Crawl(context.Context) ([]crawler.CrawledRate, error) {
	return s.rates, s.err
}

func newTestConsumer(t *testing.T, crawlers ...crawler.Crawler) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(models.SQLiteDSN(dsn)), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	container := provider.Build(&config.Config{Crawler: config.CrawlerConfig{Parallelism: 1}}, db, crawler.NewRegistry(crawlers...), nil)
	return NewConsumer(container), db
}

func TestHandleCrawlSourceStoresRates(t *testing.T) {
	consumer, db := newTestConsumer(t, stubCrawler{
		source: models.ExchangeRateSourceBibian,
		rates:  []crawler.CrawledRate{{Currency: "JPY", Rate: decimal.RequireFromString("0.2127")}},
	})
	task, err := queue.NewCrawlSourceTask(queue.CrawlSourcePayload{Source: models.ExchangeRateSourceBibian})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleCrawlSource(context.Background(), task); err != nil {
		t.Fatalf("handle crawl source failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.ExchangeRate{}).Count(&count).Error; err != nil {
		t.Fatalf("count rates failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored rate, got %d", count)
	}
}

func TestHandleCrawlSourceSkipsRetryForBadPayload(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	err := consumer.handleCrawlSource(context.Background(), asynq.NewTask(queue.TaskCrawlSource, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}

	task, _ := queue.NewCrawlSourceTask(queue.CrawlSourcePayload{Source: models.ExchangeRateSourceLetao})
	err = consumer.handleCrawlSource(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for unregistered source, got %v", err)
	}
}

func TestHandleCrawlSourceReturnsCrawlerError(t *testing.T) {
	consumer, _ := newTestConsumer(t, stubCrawler{source: models.ExchangeRateSourceLetao, err: crawler.ErrFetchFailed})
	task, _ := queue.NewCrawlSourceTask(queue.CrawlSourcePayload{Source: models.ExchangeRateSourceLetao})

	err := consumer.handleCrawlSource(context.Background(), task)
	if !errors.Is(err, crawler.ErrFetchFailed) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestHandleCrawlAllToleratesSourceFailure(t *testing.T) {
	consumer, db := newTestConsumer(t,
		stubCrawler{source: models.ExchangeRateSourceLetao, err: errors.New("timeout")},
		stubCrawler{source: models.ExchangeRateSourceBibian, rates: []crawler.CrawledRate{{Currency: "JPY", Rate: decimal.RequireFromString("0.21")}}},
	)

	if err := consumer.handleCrawlAll(context.Background(), queue.NewCrawlAllTask()); err != nil {
		t.Fatalf("crawl all task should not fail: %v", err)
	}
	var count int64
	if err := db.Model(&models.ExchangeRate{}).Where("source = ?", models.ExchangeRateSourceBibian).Count(&count).Error; err != nil {
		t.Fatalf("count rates failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected bibian rate stored, got %d", count)
	}
}

func TestNewServiceRequiresQueue(t *testing.T) {
	if _, err := NewService(&config.Config{}, &Consumer{}); err == nil {
		t.Fatalf("expected error when queue disabled")
	}
}
