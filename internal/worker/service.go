package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/queue"

	"github.com/hibiken/asynq"
)

type taskServer interface {
	Run(handler asynq.Handler) error
	Shutdown()
}

type cronScheduler interface {
	Start() error
	Shutdown()
}

// Service 异步队列服务，同时负责定时投递爬取任务
type Service struct {
	name      string
	server    taskServer
	scheduler cronScheduler
	mux       *asynq.ServeMux
	consumer  *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	scheduler, err := newCrawlScheduler(opt, cfg.Crawler.Schedule)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}
	if scheduler != nil {
		svc.scheduler = scheduler
	}
	return svc, nil
}

// newCrawlScheduler 按 cron 表达式定时投递全来源爬取任务，表达式为空时不启用
func newCrawlScheduler(opt asynq.RedisClientOpt, cronSpec string) (*asynq.Scheduler, error) {
	cronSpec = strings.TrimSpace(cronSpec)
	if cronSpec == "" {
		return nil, nil
	}
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := scheduler.Register(cronSpec, queue.NewCrawlAllTask(), queue.CrawlTaskOptions(queue.CrawlerQueue)...)
	if err != nil {
		return nil, err
	}
	logger.Infow("worker_crawl_schedule_registered", "schedule", cronSpec, "entry_id", entryID)
	return scheduler, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	_ = ctx
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
	}
	if err := s.server.Run(s.mux); err != nil {
		if s.scheduler != nil {
			s.scheduler.Shutdown()
		}
		return err
	}
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}
