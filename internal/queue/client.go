package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CrawlerQueue 汇率爬取队列名称
	CrawlerQueue = constants.QueueCrawler

	crawlTaskTimeout = 2 * time.Minute
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	crawlerQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, crawlerQueue: CrawlerQueue}, nil
	}
	opt := BuildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		crawlerQueue: CrawlerQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueCrawlAll 推送全来源爬取任务，返回任务 ID；未启用时返回空字符串
func (c *Client) EnqueueCrawlAll(opts ...asynq.Option) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	return c.enqueue(NewCrawlAllTask(), opts...)
}

// EnqueueCrawlSource 推送单来源爬取任务
func (c *Client) EnqueueCrawlSource(payload CrawlSourcePayload, opts ...asynq.Option) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	task, err := NewCrawlSourceTask(payload)
	if err != nil {
		return "", err
	}
	return c.enqueue(task, opts...)
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) (string, error) {
	options := append(CrawlTaskOptions(c.crawlerQueue), opts...)
	info, err := c.client.Enqueue(task, options...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// CrawlTaskOptions 爬取任务的公共选项，失败不重试
func CrawlTaskOptions(queueName string) []asynq.Option {
	if strings.TrimSpace(queueName) == "" {
		queueName = CrawlerQueue
	}
	return []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(0),
		asynq.Timeout(crawlTaskTimeout),
	}
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := BuildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CrawlerQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// BuildRedisOpt 生成 asynq 的 redis 连接参数
func BuildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
