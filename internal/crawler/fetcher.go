package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tiffc/backoffice/internal/config"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7"
	defaultTimeout        = 15 * time.Second
)

// Fetcher 以浏览器请求头抓取页面并解析为 DOM
type Fetcher struct {
	client         *http.Client
	userAgent      string
	accept         string
	acceptLanguage string
}

// NewFetcher 根据爬虫配置创建抓取器
func NewFetcher(cfg config.CrawlerConfig) *Fetcher {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Fetcher{
		client:         &http.Client{Timeout: timeout},
		userAgent:      firstNonEmpty(cfg.UserAgent, defaultUserAgent),
		accept:         firstNonEmpty(cfg.Accept, defaultAccept),
		acceptLanguage: firstNonEmpty(cfg.AcceptLanguage, defaultAcceptLanguage),
	}
}

// Document 抓取页面，网络错误与非 2xx 响应均返回 ErrFetchFailed
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", f.accept)
	req.Header.Set("Accept-Language", f.acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return doc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
