package crawler

import (
	"context"
	"regexp"
	"strings"

	"github.com/tiffc/backoffice/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// BibianDefaultURL 比比昂代购页
const BibianDefaultURL = "https://www.bibian.co.jp/buy/"

const bibianRateSelector = "div#pp3"

// 匹配 "1日円=0.2127元" 与 "1 JPY = 0.2127 TWD"
var bibianRatePattern = regexp.MustCompile(`(\d+)\s*(?:日円|円|JPY)\s*[=＝]\s*(\d+(?:\.\d+)?)\s*(?:元|TWD)`)

// BibianCrawler 从单一文字栏位解析日圆汇率
type BibianCrawler struct {
	fetcher *Fetcher
	url     string
}

// NewBibianCrawler 创建比比昂爬虫
func NewBibianCrawler(fetcher *Fetcher, url string) *BibianCrawler {
	return &BibianCrawler{fetcher: fetcher, url: firstNonEmpty(url, BibianDefaultURL)}
}

// Source 来源
func (c *BibianCrawler) Source() models.ExchangeRateSource {
	return models.ExchangeRateSourceBibian
}

// Crawl 抓取并解析汇率栏位，栏位不存在或文字不匹配时返回空结果
func (c *BibianCrawler) Crawl(ctx context.Context) ([]CrawledRate, error) {
	doc, err := c.fetcher.Document(ctx, c.url)
	if err != nil {
		return nil, err
	}
	return parseBibian(doc), nil
}

func parseBibian(doc *goquery.Document) []CrawledRate {
	rates := make([]CrawledRate, 0, 1)
	field := doc.Find(bibianRateSelector).First()
	if field.Length() == 0 {
		return rates
	}
	rate, ok := parseBibianText(field.Text())
	if !ok {
		return rates
	}
	return appendRate(rates, "JPY", rate)
}

// parseBibianText 按单位数量折算为每 1 日圆的汇率
func parseBibianText(text string) (decimal.Decimal, bool) {
	match := bibianRatePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return decimal.Zero, false
	}
	units, err := decimal.NewFromString(match[1])
	if err != nil || !units.IsPositive() {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(match[2])
	if err != nil {
		return decimal.Zero, false
	}
	if units.Equal(decimal.NewFromInt(1)) {
		return value, true
	}
	return value.DivRound(units, 6), true
}
