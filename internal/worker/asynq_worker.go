package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/provider"
	"github.com/tiffc/backoffice/internal/queue"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCrawlAll, c.handleCrawlAll)
	mux.HandleFunc(queue.TaskCrawlSource, c.handleCrawlSource)
}

// handleCrawlAll 单个来源失败已在汇总中记为 -1，任务本身视为成功
func (c *Consumer) handleCrawlAll(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.ExchangeRateService == nil {
		logger.Warnw("worker_crawl_all_skip_service_nil")
		return nil
	}
	taskID, _ := asynq.GetTaskID(ctx)
	ctx = logger.ContextWithRequestID(ctx, taskID)
	summary := c.ExchangeRateService.CrawlAll(ctx)
	logger.Ctx(ctx).Infow("worker_crawl_all_done", "crawled_at", summary.CrawledAt, "results", summary.Results)
	return nil
}

func (c *Consumer) handleCrawlSource(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.ExchangeRateService == nil || task == nil {
		logger.Warnw("worker_crawl_source_skip_nil", "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCrawlSourcePayload(task)
	if err != nil {
		logger.Warnw("worker_crawl_source_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	taskID, _ := asynq.GetTaskID(ctx)
	ctx = logger.ContextWithRequestID(ctx, taskID)
	count, err := c.ExchangeRateService.CrawlSource(ctx, payload.Source)
	if errors.Is(err, service.ErrCrawlerNotFound) {
		logger.Ctx(ctx).Warnw("worker_crawl_source_not_registered", "source", payload.Source.String())
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	logger.Ctx(ctx).Infow("worker_crawl_source_done", "source", payload.Source.String(), "count", count)
	return nil
}
