package crawler

import (
	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/models"
)

// NewRegistryFromConfig 注册配置中启用的内置爬虫
func NewRegistryFromConfig(cfg config.CrawlerConfig) *Registry {
	fetcher := NewFetcher(cfg)
	registry := NewRegistry()
	for _, source := range models.ExchangeRateSources() {
		name := source.String()
		if !cfg.SourceEnabled(name) {
			continue
		}
		if c := newBuiltinCrawler(source, fetcher, cfg); c != nil {
			registry.Register(c)
		}
	}
	return registry
}

func newBuiltinCrawler(source models.ExchangeRateSource, fetcher *Fetcher, cfg config.CrawlerConfig) Crawler {
	name := source.String()
	switch source {
	case models.ExchangeRateSourceLetao:
		return NewLetaoCrawler(fetcher, cfg.SourceURL(name, LetaoDefaultURL))
	case models.ExchangeRateSourceBibian:
		return NewBibianCrawler(fetcher, cfg.SourceURL(name, BibianDefaultURL))
	default:
		return nil
	}
}
