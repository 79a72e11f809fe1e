package constants

// 队列名称
const (
	QueueDefault = "default"
	QueueCrawler = "crawler"
)

// 异步任务类型
const (
	TaskExchangeRateCrawlAll    = "exchange_rate:crawl_all"
	TaskExchangeRateCrawlSource = "exchange_rate:crawl_source"
)

// 缓存 key
const (
	CacheKeyExchangeRateLatest = "exchange_rate:latest"
	CacheKeyProductSummaryFmt  = "product:summary:%d"
)

// 爬取结果计数，失败记为 -1
const CrawlResultFailed = -1
