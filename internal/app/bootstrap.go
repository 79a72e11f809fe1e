package app

import (
	"errors"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/provider"
	"github.com/tiffc/backoffice/internal/router"
	"github.com/tiffc/backoffice/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !validMode(mode) {
		return nil, errors.New("unknown mode: " + mode)
	}

	container := provider.NewContainer(cfg)
	services, err := buildServices(cfg, mode, container)
	if err != nil {
		container.Close()
		return nil, err
	}
	return NewRunner(services...), nil
}

func buildServices(cfg *config.Config, mode string, container *provider.Container) ([]Service, error) {
	var services []Service

	// HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Addr(), engine))
	}

	// Worker 服务，all 模式下队列未启用时跳过
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		workerService, err := worker.NewService(cfg, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	} else if mode == ModeAll {
		logger.Infow("app_worker_skipped", "reason", "queue disabled")
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return services, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
