package provider

import (
	"time"

	"github.com/tiffc/backoffice/internal/cache"
	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/crawler"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/queue"
	"github.com/tiffc/backoffice/internal/repository"
	"github.com/tiffc/backoffice/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Crawlers    *crawler.Registry

	// Repositories
	ExchangeRateRepo repository.ExchangeRateRepository
	OrderRepo        repository.OrderRepository
	ProductRepo      repository.ProductRepository

	// Services
	ExchangeRateService *service.ExchangeRateService
	OrderService        *service.OrderService
	ProductService      *service.ProductService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	return Build(cfg, models.DB, crawler.NewRegistryFromConfig(cfg.Crawler), queueClient)
}

// Build 用给定的数据库与爬虫组装容器，不触碰外部连接
func Build(cfg *config.Config, db *gorm.DB, crawlers *crawler.Registry, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Crawlers:    crawlers,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ExchangeRateRepo = repository.NewExchangeRateRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
}

func (c *Container) initServices() {
	c.ExchangeRateService = service.NewExchangeRateService(c.ExchangeRateRepo, c.Crawlers, c.Config.ExchangeRate, c.Config.Crawler.Parallelism)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.Config.Order)
	c.ProductService = service.NewProductService(c.ProductRepo, time.Duration(c.Config.Order.EnrichCacheTTLSeconds)*time.Second)
}

// Close 释放容器持有的连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
}
