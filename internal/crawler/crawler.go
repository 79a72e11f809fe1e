package crawler

import (
	"context"
	"errors"

	"github.com/tiffc/backoffice/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrFetchFailed 页面抓取失败（网络错误或非 2xx 响应）
	ErrFetchFailed = errors.New("crawler fetch failed")
	// ErrParseFailed 页面结构无法解析
	ErrParseFailed = errors.New("crawler parse failed")
)

// CrawledRate 单条抓取结果，币种已归一化
type CrawledRate struct {
	Currency string
	Rate     decimal.Decimal
}

// Crawler 汇率来源爬虫，只负责抓取与解析，不做持久化
type Crawler interface {
	Source() models.ExchangeRateSource
	Crawl(ctx context.Context) ([]CrawledRate, error)
}

// Registry 按来源索引的爬虫集合，保留注册顺序
type Registry struct {
	order    []models.ExchangeRateSource
	crawlers map[models.ExchangeRateSource]Crawler
}

// NewRegistry 创建爬虫注册表，同一来源重复注册时后者覆盖前者
func NewRegistry(crawlers ...Crawler) *Registry {
	r := &Registry{crawlers: make(map[models.ExchangeRateSource]Crawler, len(crawlers))}
	for _, c := range crawlers {
		r.Register(c)
	}
	return r
}

// Register 注册爬虫
func (r *Registry) Register(c Crawler) {
	if c == nil {
		return
	}
	source := c.Source()
	if _, exists := r.crawlers[source]; !exists {
		r.order = append(r.order, source)
	}
	r.crawlers[source] = c
}

// Get 获取指定来源的爬虫
func (r *Registry) Get(source models.ExchangeRateSource) (Crawler, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.crawlers[source]
	return c, ok
}

// All 按注册顺序返回全部爬虫
func (r *Registry) All() []Crawler {
	if r == nil {
		return nil
	}
	list := make([]Crawler, 0, len(r.order))
	for _, source := range r.order {
		list = append(list, r.crawlers[source])
	}
	return list
}

// Len 已注册爬虫数量
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// appendRate 归一化币种并过滤非正汇率
func appendRate(list []CrawledRate, label string, rate decimal.Decimal) []CrawledRate {
	currency := NormalizeCurrency(label)
	if currency == "" || !rate.IsPositive() {
		return list
	}
	return append(list, CrawledRate{Currency: currency, Rate: rate})
}
