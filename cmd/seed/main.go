package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	dsn, err := cfg.Database.ResolveDSN()
	if err != nil {
		stdLog.Fatalf("Invalid database dsn: %v", err)
	}
	if err := models.InitDB(cfg.Database.Driver, dsn, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	productRepo := repository.NewProductRepository(models.DB)
	orderRepo := repository.NewOrderRepository(models.DB)
	productService := service.NewProductService(productRepo, 0)
	orderService := service.NewOrderService(orderRepo, productRepo, cfg.Order)

	// 添加商品
	products := []service.ProductInput{
		{
			Title:            "PORTER TANKER 托特包",
			PriceJpyOriginal: decimal.NewFromInt(24200),
			PriceTwd:         decimalPtr("5680"),
			URL:              "https://www.yoshidakaban.com/product/100148.html",
			ImageURLs:        []string{"https://images.unsplash.com/photo-1590874103328-eac38a683ce7?w=800"},
			ShopName:         strPtr("吉田カバン"),
			Category:         strPtr("包包"),
			Variants: []service.VariantInput{
				{Name: "顏色", Value: "黑色"},
				{Name: "顏色", Value: "鼠尾草綠"},
			},
		},
		{
			Title:            "無印良品 懶人沙發",
			PriceJpyOriginal: decimal.NewFromInt(16900),
			PriceJpySale:     decimalPtr("14900"),
			URL:              "https://www.muji.com/jp/ja/store/cmdty/detail/4550182045424",
			ImageURLs:        []string{"https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=800"},
			ShopName:         strPtr("MUJI"),
			Category:         strPtr("家居"),
			Notes:            strPtr("大型包裹，需走海運"),
		},
		{
			Title:            "SK-II 青春露 230ml",
			PriceJpyOriginal: decimal.NewFromInt(29700),
			URL:              "https://item.rakuten.co.jp/example/skii-230",
			ImageURLs:        []string{"https://images.unsplash.com/photo-1620916566398-39f1143ab7be?w=800"},
			ShopName:         strPtr("楽天市場"),
			Category:         strPtr("美妝"),
		},
	}

	seeded := make([]*models.Product, 0, len(products))
	for _, input := range products {
		existing, err := productService.List(ctx, repository.ProductListFilter{Search: input.Title})
		if err != nil {
			stdLog.Printf("Failed to query product %s: %v", input.Title, err)
			continue
		}
		if len(existing) > 0 {
			stdLog.Printf("Product already exists: %s", input.Title)
			seeded = append(seeded, &existing[0])
			continue
		}
		product, err := productService.Create(ctx, input)
		if err != nil {
			stdLog.Printf("Failed to create product %s: %v", input.Title, err)
			continue
		}
		stdLog.Printf("Created product: %s (#%d)", product.Title, product.ID)
		seeded = append(seeded, product)
	}

	// 示例订单
	if len(seeded) == 0 {
		return
	}
	orders, err := orderService.ListOrders(ctx, repository.OrderListFilter{Page: 1, PageSize: 1})
	if err != nil {
		stdLog.Fatalf("Failed to list orders: %v", err)
	}
	if len(orders) > 0 {
		stdLog.Printf("Orders already exist, skip sample order")
		return
	}
	first := seeded[0]
	item := service.CreateOrderItem{
		ProductID: first.ID,
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(5680),
	}
	if len(first.Variants) > 0 {
		item.Variants = []service.VariantInput{{Name: first.Variants[0].VariantName, Value: first.Variants[0].VariantValue}}
	}
	order, err := orderService.CreateOrder(ctx, service.CreateOrderInput{
		CustomerName:  "陳小姐",
		CustomerEmail: strPtr("chen@example.com"),
		CustomerPhone: strPtr("0912-000-111"),
		Items:         []service.CreateOrderItem{item},
	})
	if err != nil {
		stdLog.Fatalf("Failed to create sample order: %v", err)
	}
	fmt.Printf("Created sample order %s total %s\n", order.OrderNumber, order.TotalAmount.StringFixed(2))
}

func strPtr(v string) *string {
	return &v
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
