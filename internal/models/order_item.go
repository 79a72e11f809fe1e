package models

import "time"

// OrderItem 订单项表
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID（外键，商品被引用时禁止删除）
	Quantity  int       `gorm:"not null" json:"quantity"`                                // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	Subtotal  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // 小计
	CreatedAt time.Time `json:"created_at"`                                              // 创建时间

	Product     *Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"` // 关联商品，仅用于建立外键
	Variants    []OrderItemVariant `gorm:"-" json:"variants"`                                          // 规格选项
	ProductInfo *ProductSummary    `gorm:"-" json:"product_info,omitempty"`                            // 商品摘要（查询时补全）
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemVariant 订单项规格表
type OrderItemVariant struct {
	ID           uint      `gorm:"primarykey" json:"id"`                            // 主键
	OrderItemID  uint      `gorm:"index;not null" json:"order_item_id"`             // 订单项ID
	VariantName  string    `gorm:"type:varchar(100);not null" json:"variant_name"`  // 规格名称（如 颜色）
	VariantValue string    `gorm:"type:varchar(200);not null" json:"variant_value"` // 规格值（如 黑色）
	CreatedAt    time.Time `json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (OrderItemVariant) TableName() string {
	return "order_item_variants"
}

// ProductSummary 订单项关联的商品摘要
type ProductSummary struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
}
