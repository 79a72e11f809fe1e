package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/tiffc/backoffice/internal/app"
	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	// 初始化数据库
	dsn, err := cfg.Database.ResolveDSN()
	if err != nil {
		stdLog.Fatalf("数据库连接串无效: %v", err)
	}
	if err := models.InitDB(cfg.Database.Driver, dsn, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + ansiBold + "backoffice" + ansiReset + ansiDim + " · 代購後台 API" + ansiReset)
	fmt.Println(ansiDim + "mode: " + mode + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
