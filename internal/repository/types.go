package repository

import (
	"errors"
	"time"

	"github.com/tiffc/backoffice/internal/models"
)

// ErrProductInUse 商品仍被订单项引用
var ErrProductInUse = errors.New("product is referenced by order items")

// OrderListFilter 查询订单列表的过滤条件，零值表示不过滤
type OrderListFilter struct {
	Page     int
	PageSize int
	Status   models.OrderStatus
}

// ExchangeRateHistoryFilter 查询汇率历史的过滤条件
type ExchangeRateHistoryFilter struct {
	Source   models.ExchangeRateSource
	Currency string
	Since    time.Time
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Category string
	Search   string
}
