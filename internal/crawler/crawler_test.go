package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const letaoPage = `<html><body>
<div class="index-aside-column indexBannerExRate">
  <table>
    <tr><td class="k"> 日幣 </td><td class="v">0.2150</td></tr>
    <tr><td class="k">美金</td><td class="v">32.45</td></tr>
    <tr><td class="k">韓元</td><td class="v">--</td></tr>
    <tr><td class="k">泰銖</td><td class="v">0.95</td></tr>
    <tr><td class="k">歐元</td><td class="v">0</td></tr>
    <tr><td class="k">港幣</td></tr>
  </table>
</div>
<div class="other"><table><tr><td class="k">英鎊</td><td class="v">40.1</td></tr></table></div>
</body></html>`

func newPageServer(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var captured http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestLetaoCrawlerParsesRateTable(t *testing.T) {
	server, headers := newPageServer(t, http.StatusOK, letaoPage)
	crawler := NewLetaoCrawler(NewFetcher(config.CrawlerConfig{}), server.URL)

	rates, err := crawler.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 3)

	assert.Equal(t, "JPY", rates[0].Currency)
	assert.True(t, rates[0].Rate.Equal(decimal.RequireFromString("0.2150")))
	assert.Equal(t, "USD", rates[1].Currency)
	assert.True(t, rates[1].Rate.Equal(decimal.RequireFromString("32.45")))
	assert.Equal(t, "泰銖", rates[2].Currency)

	assert.Equal(t, defaultUserAgent, headers.Get("User-Agent"))
	assert.Equal(t, defaultAcceptLanguage, headers.Get("Accept-Language"))
	assert.Equal(t, models.ExchangeRateSourceLetao, crawler.Source())
}

func TestLetaoCrawlerMissingTableReturnsEmpty(t *testing.T) {
	server, _ := newPageServer(t, http.StatusOK, "<html><body><p>maintenance</p></body></html>")
	crawler := NewLetaoCrawler(NewFetcher(config.CrawlerConfig{}), server.URL)

	rates, err := crawler.Crawl(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestBibianCrawlerParsesSingleField(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "chinese", text: "1日円=0.2127元", want: "0.2127"},
		{name: "english", text: "1 JPY = 0.2127 TWD", want: "0.2127"},
		{name: "hundred units", text: "100円 = 21.27元", want: "0.2127"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := `<html><body><div class="auction-exchange-rate-usa" id="pp3"> ` + tc.text + ` </div></body></html>`
			server, _ := newPageServer(t, http.StatusOK, page)
			crawler := NewBibianCrawler(NewFetcher(config.CrawlerConfig{}), server.URL)

			rates, err := crawler.Crawl(context.Background())
			require.NoError(t, err)
			require.Len(t, rates, 1)
			assert.Equal(t, "JPY", rates[0].Currency)
			assert.True(t, rates[0].Rate.Equal(decimal.RequireFromString(tc.want)), "got %s", rates[0].Rate)
		})
	}
}

func TestBibianCrawlerWithoutAnchorReturnsEmpty(t *testing.T) {
	for _, page := range []string{
		"<html><body><div id=\"pp2\">1日円=0.2127元</div></body></html>",
		"<html><body><div id=\"pp3\">匯率更新中</div></body></html>",
	} {
		server, _ := newPageServer(t, http.StatusOK, page)
		crawler := NewBibianCrawler(NewFetcher(config.CrawlerConfig{}), server.URL)

		rates, err := crawler.Crawl(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rates)
	}
}

func TestFetcherNonSuccessStatus(t *testing.T) {
	server, _ := newPageServer(t, http.StatusServiceUnavailable, "busy")
	crawler := NewLetaoCrawler(NewFetcher(config.CrawlerConfig{}), server.URL)

	_, err := crawler.Crawl(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestFetcherNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	crawler := NewBibianCrawler(NewFetcher(config.CrawlerConfig{TimeoutSeconds: 1}), url)
	_, err := crawler.Crawl(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetcherUsesConfiguredHeaders(t *testing.T) {
	server, headers := newPageServer(t, http.StatusOK, letaoPage)
	fetcher := NewFetcher(config.CrawlerConfig{UserAgent: "backoffice-test", AcceptLanguage: "ja"})

	_, err := fetcher.Document(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "backoffice-test", headers.Get("User-Agent"))
	assert.Equal(t, "ja", headers.Get("Accept-Language"))
	assert.Equal(t, defaultAccept, headers.Get("Accept"))
}

func TestNormalizeCurrency(t *testing.T) {
	cases := map[string]string{
		"日幣":      "JPY",
		" 日圓 ":    "JPY",
		"円":       "JPY",
		"美金":      "USD",
		"人民幣":     "CNY",
		"韓幣":      "KRW",
		"新台幣":     "TWD",
		"usd":     "USD",
		" 泰銖 ":    "泰銖",
		"":        "",
		"Bitcoin": "Bitcoin",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCurrency(in), "input %q", in)
	}
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := config.CrawlerConfig{Sources: map[string]config.CrawlerSourceConfig{
		"bibian": {Enabled: false},
	}}
	registry := NewRegistryFromConfig(cfg)
	require.Equal(t, 1, registry.Len())

	_, ok := registry.Get(models.ExchangeRateSourceLetao)
	assert.True(t, ok)
	_, ok = registry.Get(models.ExchangeRateSourceBibian)
	assert.False(t, ok)
}

func TestRegistryFromConfigRegistersEverySource(t *testing.T) {
	registry := NewRegistryFromConfig(config.CrawlerConfig{})
	require.Equal(t, len(models.ExchangeRateSources()), registry.Len())
	for _, source := range models.ExchangeRateSources() {
		c, ok := registry.Get(source)
		require.True(t, ok, "source %s", source)
		assert.Equal(t, source, c.Source())
	}
}
