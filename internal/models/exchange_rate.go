package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate 汇率记录表（只追加）
type ExchangeRate struct {
	ID        uint               `gorm:"primarykey" json:"id"`                                                                           // 主键
	Source    ExchangeRateSource `gorm:"type:varchar(20);not null;uniqueIndex:idx_exchange_rate_observation,priority:1" json:"source"`   // 来源
	Currency  string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_exchange_rate_observation,priority:2" json:"currency"` // 币种代码
	Rate      decimal.Decimal    `gorm:"type:decimal(20,6);not null" json:"rate"`                                                        // 汇率（1 单位外币兑台币）
	CrawledAt time.Time          `gorm:"not null;uniqueIndex:idx_exchange_rate_observation,priority:3;index" json:"crawled_at"`          // 爬取时间（UTC）
	CreatedAt time.Time          `json:"created_at"`                                                                                     // 写入时间
}

// TableName 指定表名
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
