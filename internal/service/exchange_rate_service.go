package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tiffc/backoffice/internal/cache"
	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/constants"
	"github.com/tiffc/backoffice/internal/crawler"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	defaultLatestBySourceLimit = 10
	defaultHistoryDays         = 30
	maxHistoryDays             = 365
	defaultLatestCacheTTL      = 5 * time.Minute
)

// CrawlSummary 一轮爬取结果：各来源写入笔数，失败记为 -1
type CrawlSummary struct {
	CrawledAt time.Time                         `json:"crawled_at"`
	Results   map[models.ExchangeRateSource]int `json:"results"`
}

// ExchangeRateService 汇率爬取与查询服务
type ExchangeRateService struct {
	repo        repository.ExchangeRateRepository
	registry    *crawler.Registry
	cfg         config.ExchangeRateConfig
	parallelism int
	now         func() time.Time
}

// NewExchangeRateService 创建汇率服务
func NewExchangeRateService(repo repository.ExchangeRateRepository, registry *crawler.Registry, cfg config.ExchangeRateConfig, parallelism int) *ExchangeRateService {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &ExchangeRateService{
		repo:        repo,
		registry:    registry,
		cfg:         cfg,
		parallelism: parallelism,
		now:         time.Now,
	}
}

// CrawlAll 爬取全部来源，所有来源共享同一爬取时间
// 单个来源失败只记录 -1，不影响其他来源。
func (s *ExchangeRateService) CrawlAll(ctx context.Context) CrawlSummary {
	crawledAt := s.now().UTC()
	summary := CrawlSummary{
		CrawledAt: crawledAt,
		Results:   make(map[models.ExchangeRateSource]int, s.registry.Len()),
	}

	var (
		mu       sync.Mutex
		g        errgroup.Group
		ingested bool
	)
	g.SetLimit(s.parallelism)
	for _, c := range s.registry.All() {
		g.Go(func() error {
			count, err := s.ingest(ctx, c, crawledAt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Ctx(ctx).Errorw("crawl_source_failed", "source", c.Source().String(), "error", err)
				summary.Results[c.Source()] = constants.CrawlResultFailed
				return nil
			}
			summary.Results[c.Source()] = count
			if count > 0 {
				ingested = true
			}
			return nil
		})
	}
	_ = g.Wait()

	if ingested {
		s.invalidateLatest(ctx)
	}
	logger.Ctx(ctx).Infow("crawl_all_finished", "crawled_at", crawledAt, "results", summary.Results)
	return summary
}

// CrawlSource 爬取单一来源，错误直接返回
func (s *ExchangeRateService) CrawlSource(ctx context.Context, source models.ExchangeRateSource) (int, error) {
	c, ok := s.registry.Get(source)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCrawlerNotFound, source.String())
	}
	count, err := s.ingest(ctx, c, s.now().UTC())
	if err != nil {
		logger.Ctx(ctx).Errorw("crawl_source_failed", "source", source.String(), "error", err)
		return 0, err
	}
	if count > 0 {
		s.invalidateLatest(ctx)
	}
	return count, nil
}

// ingest 抓取并写入，同一轮中重复币种只保留第一条
func (s *ExchangeRateService) ingest(ctx context.Context, c crawler.Crawler, crawledAt time.Time) (int, error) {
	source := c.Source()
	logger.Ctx(ctx).Infow("crawl_source_started", "source", source.String())

	rates, err := c.Crawl(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([]models.ExchangeRate, 0, len(rates))
	seen := make(map[string]struct{}, len(rates))
	for _, rate := range rates {
		if rate.Currency == "" || !rate.Rate.IsPositive() {
			continue
		}
		if _, dup := seen[rate.Currency]; dup {
			continue
		}
		seen[rate.Currency] = struct{}{}
		rows = append(rows, models.ExchangeRate{
			Source:    source,
			Currency:  rate.Currency,
			Rate:      rate.Rate,
			CrawledAt: crawledAt,
		})
	}
	if len(rows) == 0 {
		logger.Ctx(ctx).Warnw("crawl_source_empty", "source", source.String())
		return 0, nil
	}
	if err := s.repo.BulkCreate(ctx, rows); err != nil {
		return 0, fmt.Errorf("store %s rates: %w", source.String(), err)
	}
	logger.Ctx(ctx).Infow("crawl_source_succeeded", "source", source.String(), "count", len(rows))
	return len(rows), nil
}

// GetLatestBySource 获取指定来源最近的记录
func (s *ExchangeRateService) GetLatestBySource(ctx context.Context, source models.ExchangeRateSource) ([]models.ExchangeRate, error) {
	if !source.Valid() {
		return nil, ErrInvalidSource
	}
	limit := s.cfg.LatestBySourceLimit
	if limit <= 0 {
		limit = defaultLatestBySourceLimit
	}
	rates, err := s.repo.ListLatestBySource(ctx, source, limit)
	if err != nil {
		return nil, err
	}
	return nonNilRates(rates), nil
}

// GetAllLatest 每个 (来源, 币种) 最新一条，优先读取缓存
func (s *ExchangeRateService) GetAllLatest(ctx context.Context) ([]models.ExchangeRate, error) {
	var cached []models.ExchangeRate
	hit, err := cache.GetJSON(ctx, constants.CacheKeyExchangeRateLatest, &cached)
	if err != nil {
		logger.Ctx(ctx).Warnw("exchange_rate_cache_get_failed", "error", err)
	}
	if hit && err == nil {
		return nonNilRates(cached), nil
	}

	rates, err := s.repo.ListLatestPerPair(ctx)
	if err != nil {
		return nil, err
	}
	rates = nonNilRates(rates)
	if err := cache.SetJSON(ctx, constants.CacheKeyExchangeRateLatest, rates, s.latestCacheTTL()); err != nil {
		logger.Ctx(ctx).Warnw("exchange_rate_cache_set_failed", "error", err)
	}
	return rates, nil
}

// GetHistory 获取近 days 天的历史记录，days 为 0 时使用默认天数
func (s *ExchangeRateService) GetHistory(ctx context.Context, source models.ExchangeRateSource, currency string, days int) ([]models.ExchangeRate, error) {
	if !source.Valid() {
		return nil, ErrInvalidSource
	}
	code := crawler.NormalizeCurrency(currency)
	if code == "" {
		return nil, ErrInvalidCurrency
	}
	if days == 0 {
		days = s.DefaultHistoryDays()
	}
	maxDays := s.cfg.HistoryMaxDays
	if maxDays <= 0 || maxDays > maxHistoryDays {
		maxDays = maxHistoryDays
	}
	if days < 1 || days > maxDays {
		return nil, ErrInvalidHistoryDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	rates, err := s.repo.ListHistory(ctx, repository.ExchangeRateHistoryFilter{
		Source:   source,
		Currency: code,
		Since:    since,
	})
	if err != nil {
		return nil, err
	}
	return nonNilRates(rates), nil
}

// DefaultHistoryDays 历史查询默认天数
func (s *ExchangeRateService) DefaultHistoryDays() int {
	if s.cfg.HistoryDefaultDays > 0 {
		return s.cfg.HistoryDefaultDays
	}
	return defaultHistoryDays
}

func (s *ExchangeRateService) latestCacheTTL() time.Duration {
	if s.cfg.LatestCacheTTLSeconds > 0 {
		return time.Duration(s.cfg.LatestCacheTTLSeconds) * time.Second
	}
	return defaultLatestCacheTTL
}

func (s *ExchangeRateService) invalidateLatest(ctx context.Context) {
	if err := cache.Del(ctx, constants.CacheKeyExchangeRateLatest); err != nil {
		logger.Ctx(ctx).Warnw("exchange_rate_cache_invalidate_failed", "error", err)
	}
}

func nonNilRates(rates []models.ExchangeRate) []models.ExchangeRate {
	if rates == nil {
		return []models.ExchangeRate{}
	}
	return rates
}
