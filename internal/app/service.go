package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可启动/停止的长驻服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 同时运行多个服务，任一退出即整体停止
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 运行服务并在收到信号时优雅停止
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

type serviceExit struct {
	name string
	err  error
}

// Run 启动全部服务，等待上下文取消或首个服务退出，然后逆序停止
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		if svc == nil {
			exits <- serviceExit{name: "unknown", err: errors.New("service is nil")}
			continue
		}
		go func() {
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(ctx)
			log.Infow("service_exit", "service", svc.Name(), "error", err)
			exits <- serviceExit{name: svc.Name(), err: err}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case exit := <-exits:
		runErr = exit.err
		if runErr == nil {
			log.Warnw("service_exited_early", "service", exit.name)
		}
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
