package crawler

import (
	"context"
	"strings"

	"github.com/tiffc/backoffice/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// LetaoDefaultURL 樂淘首页
const LetaoDefaultURL = "https://www.letao.com.tw/"

const letaoRowSelector = "div.index-aside-column.indexBannerExRate tr"

// LetaoCrawler 解析首页侧栏汇率表，每行一个币种
type LetaoCrawler struct {
	fetcher *Fetcher
	url     string
}

// NewLetaoCrawler 创建樂淘爬虫
func NewLetaoCrawler(fetcher *Fetcher, url string) *LetaoCrawler {
	return &LetaoCrawler{fetcher: fetcher, url: firstNonEmpty(url, LetaoDefaultURL)}
}

// Source 来源
func (c *LetaoCrawler) Source() models.ExchangeRateSource {
	return models.ExchangeRateSourceLetao
}

// Crawl 抓取并解析汇率表
func (c *LetaoCrawler) Crawl(ctx context.Context) ([]CrawledRate, error) {
	doc, err := c.fetcher.Document(ctx, c.url)
	if err != nil {
		return nil, err
	}
	return parseLetao(doc), nil
}

// parseLetao 缺少单元格或汇率无法解析的行直接跳过
func parseLetao(doc *goquery.Document) []CrawledRate {
	rates := make([]CrawledRate, 0)
	doc.Find(letaoRowSelector).Each(func(_ int, row *goquery.Selection) {
		label := row.Find("td.k").First()
		value := row.Find("td.v").First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}
		rate, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(value.Text()), ",", ""))
		if err != nil {
			return
		}
		rates = appendRate(rates, label.Text(), rate)
	})
	return rates
}
