package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tiffc/backoffice/internal/cache"
	"github.com/tiffc/backoffice/internal/config"
	adminhandlers "github.com/tiffc/backoffice/internal/http/handlers/admin"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bo"
	}
	crawlRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:crawl", redisPrefix),
		WindowSeconds: cfg.Security.CrawlRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CrawlRateLimit.MaxRequests,
	}
	crawlLimit := RateLimitMiddleware(cache.Client(), crawlRule, KeyByIPAndParam("source"))

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 汇率
		exchangeRate := api.Group("/ExchangeRate")
		{
			exchangeRate.POST("/crawl", crawlLimit, handler.CrawlAllExchangeRates)
			exchangeRate.POST("/crawl/:source", crawlLimit, handler.CrawlExchangeRateSource)
			exchangeRate.GET("/latest", handler.GetLatestExchangeRates)
			exchangeRate.GET("/latest/:source", handler.GetLatestExchangeRatesBySource)
			exchangeRate.GET("/history/:source/:currency", handler.GetExchangeRateHistory)
		}

		// 订单
		order := api.Group("/Order")
		{
			order.POST("", handler.CreateOrder)
			order.GET("", handler.ListOrders)
			order.GET("/:orderNumber", handler.GetOrderByNumber)
			order.PUT("/:orderId", handler.UpdateOrder)
			order.PATCH("/:orderId/status/:status", handler.UpdateOrderStatus)
			order.DELETE("/:orderId", handler.DeleteOrder)
		}
	}

	// 商品
	product := r.Group("/Product")
	{
		product.GET("", handler.ListProducts)
		product.POST("", handler.CreateProduct)
		product.POST("/:productId/variants", handler.AddProductVariants)
		product.PUT("/:productId", handler.UpdateProduct)
		product.DELETE("/variants/:variantId", handler.DeleteProductVariant)
		product.DELETE("/:productId/variants", handler.DeleteAllProductVariants)
		product.DELETE("/:productId", handler.DeleteProduct)
	}

	// 健康检查
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
