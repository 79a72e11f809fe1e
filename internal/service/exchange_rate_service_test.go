package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/constants"
	"github.com/tiffc/backoffice/internal/crawler"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	source models.ExchangeRateSource
	rates  []crawler.CrawledRate
	err    error
	calls  atomic.Int32
}

func (f *fakeCrawler) Source() models.ExchangeRateSource { return f.source }

func (f *fakeCrawler) Crawl(context.Context) ([]crawler.CrawledRate, error) {
	f.calls.Add(1)
	return f.rates, f.err
}

func rate(currency, value string) crawler.CrawledRate {
	return crawler.CrawledRate{Currency: currency, Rate: decimal.RequireFromString(value)}
}

func newRateService(t *testing.T, crawlers ...crawler.Crawler) (*ExchangeRateService, *repository.GormExchangeRateRepository) {
	t.Helper()
	repo := repository.NewExchangeRateRepository(openServiceTestDB(t))
	svc := NewExchangeRateService(repo, crawler.NewRegistry(crawlers...), config.ExchangeRateConfig{}, 2)
	return svc, repo
}

func TestCrawlAllIsolatesFailures(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, err: errors.New("connection reset")}
	bibian := &fakeCrawler{source: models.ExchangeRateSourceBibian, rates: []crawler.CrawledRate{rate("JPY", "0.2127")}}
	svc, repo := newRateService(t, letao, bibian)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	summary := svc.CrawlAll(context.Background())

	assert.Equal(t, constants.CrawlResultFailed, summary.Results[models.ExchangeRateSourceLetao])
	assert.Equal(t, 1, summary.Results[models.ExchangeRateSourceBibian])

	stored, err := repo.ListLatestBySource(context.Background(), models.ExchangeRateSourceBibian, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].CrawledAt.Equal(summary.CrawledAt))
}

func TestCrawlAllSharesTimestampAndRecordsEmpty(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, rates: []crawler.CrawledRate{
		rate("JPY", "0.2150"),
		rate("USD", "32.45"),
		rate("JPY", "0.2199"),
		rate("KRW", "0"),
	}}
	bibian := &fakeCrawler{source: models.ExchangeRateSourceBibian}
	svc, repo := newRateService(t, letao, bibian)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	summary := svc.CrawlAll(context.Background())

	assert.True(t, summary.CrawledAt.Equal(fixed))
	assert.Equal(t, 2, summary.Results[models.ExchangeRateSourceLetao])
	assert.Equal(t, 0, summary.Results[models.ExchangeRateSourceBibian])

	stored, err := repo.ListLatestBySource(context.Background(), models.ExchangeRateSourceLetao, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, row := range stored {
		assert.True(t, row.CrawledAt.Equal(fixed))
		if row.Currency == "JPY" {
			assert.True(t, row.Rate.Equal(decimal.RequireFromString("0.2150")))
		}
	}
}

func TestCrawlAllRunsEverySourceSequentially(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, rates: []crawler.CrawledRate{rate("JPY", "0.21")}}
	bibian := &fakeCrawler{source: models.ExchangeRateSourceBibian, rates: []crawler.CrawledRate{rate("JPY", "0.22")}}
	repo := repository.NewExchangeRateRepository(openServiceTestDB(t))
	svc := NewExchangeRateService(repo, crawler.NewRegistry(letao, bibian), config.ExchangeRateConfig{}, 1)

	summary := svc.CrawlAll(context.Background())

	assert.Len(t, summary.Results, 2)
	assert.EqualValues(t, 1, letao.calls.Load())
	assert.EqualValues(t, 1, bibian.calls.Load())
}

func TestCrawlSource(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, rates: []crawler.CrawledRate{rate("JPY", "0.21"), rate("USD", "32.1")}}
	svc, _ := newRateService(t, letao)

	count, err := svc.CrawlSource(context.Background(), models.ExchangeRateSourceLetao)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = svc.CrawlSource(context.Background(), models.ExchangeRateSourceBibian)
	assert.ErrorIs(t, err, ErrCrawlerNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrawlSourcePropagatesCrawlerError(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, err: crawler.ErrFetchFailed}
	svc, _ := newRateService(t, letao)

	_, err := svc.CrawlSource(context.Background(), models.ExchangeRateSourceLetao)
	assert.ErrorIs(t, err, crawler.ErrFetchFailed)
}

func TestGetAllLatestReturnsNewestPerPair(t *testing.T) {
	letao := &fakeCrawler{source: models.ExchangeRateSourceLetao, rates: []crawler.CrawledRate{rate("JPY", "0.21")}}
	bibian := &fakeCrawler{source: models.ExchangeRateSourceBibian, rates: []crawler.CrawledRate{rate("JPY", "0.2127")}}
	svc, _ := newRateService(t, letao, bibian)
	ctx := context.Background()

	first := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	svc.CrawlAll(ctx)

	letao.rates = []crawler.CrawledRate{rate("JPY", "0.215")}
	svc.now = func() time.Time { return first.Add(6 * time.Hour) }
	svc.CrawlAll(ctx)

	latest, err := svc.GetAllLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	for _, row := range latest {
		assert.True(t, row.CrawledAt.Equal(first.Add(6*time.Hour)))
		if row.Source == models.ExchangeRateSourceLetao {
			assert.True(t, row.Rate.Equal(decimal.RequireFromString("0.215")))
		}
	}
}

func TestGetAllLatestEmptyStore(t *testing.T) {
	svc, _ := newRateService(t)
	latest, err := svc.GetAllLatest(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Empty(t, latest)
}

func TestGetHistory(t *testing.T) {
	svc, repo := newRateService(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, repo.BulkCreate(ctx, []models.ExchangeRate{
		{Source: models.ExchangeRateSourceLetao, Currency: "JPY", Rate: decimal.RequireFromString("0.20"), CrawledAt: now.AddDate(0, 0, -40)},
		{Source: models.ExchangeRateSourceLetao, Currency: "JPY", Rate: decimal.RequireFromString("0.21"), CrawledAt: now.AddDate(0, 0, -10)},
		{Source: models.ExchangeRateSourceLetao, Currency: "JPY", Rate: decimal.RequireFromString("0.22"), CrawledAt: now.AddDate(0, 0, -1)},
		{Source: models.ExchangeRateSourceLetao, Currency: "USD", Rate: decimal.RequireFromString("32"), CrawledAt: now.AddDate(0, 0, -1)},
	}))

	history, err := svc.GetHistory(ctx, models.ExchangeRateSourceLetao, "日幣", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Rate.Equal(decimal.RequireFromString("0.22")))

	history, err = svc.GetHistory(ctx, models.ExchangeRateSourceLetao, "JPY", 365)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	for _, days := range []int{-1, 366} {
		_, err = svc.GetHistory(ctx, models.ExchangeRateSourceLetao, "JPY", days)
		assert.ErrorIs(t, err, ErrInvalidHistoryDays)
		assert.ErrorIs(t, err, ErrValidation)
	}
	_, err = svc.GetHistory(ctx, models.ExchangeRateSourceNone, "JPY", 30)
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = svc.GetHistory(ctx, models.ExchangeRateSourceLetao, "  ", 30)
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestGetLatestBySourceHonorsLimit(t *testing.T) {
	svc, repo := newRateService(t)
	svc.cfg.LatestBySourceLimit = 2
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.ExchangeRate, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.ExchangeRate{
			Source:    models.ExchangeRateSourceBibian,
			Currency:  "JPY",
			Rate:      decimal.RequireFromString("0.21"),
			CrawledAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	require.NoError(t, repo.BulkCreate(ctx, rows))

	latest, err := svc.GetLatestBySource(ctx, models.ExchangeRateSourceBibian)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].CrawledAt.Equal(base.Add(2*time.Hour)))
}
