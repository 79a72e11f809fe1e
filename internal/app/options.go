package app

import (
	"os"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func validMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	default:
		return false
	}
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
