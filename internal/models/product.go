package models

import "time"

// Product 商品表
type Product struct {
	ID               uint        `gorm:"primarykey" json:"id"`                                            // 主键
	Title            string      `gorm:"type:varchar(500);not null" json:"title"`                         // 商品标题
	PriceJpyOriginal Money       `gorm:"type:decimal(20,2);not null;default:0" json:"price_jpy_original"` // 日币原价
	PriceJpySale     *Money      `gorm:"type:decimal(20,2)" json:"price_jpy_sale"`                        // 日币特价
	PriceTwd         *Money      `gorm:"type:decimal(20,2)" json:"price_twd"`                             // 台币售价
	Description      *string     `gorm:"type:text" json:"description"`                                    // 描述
	URL              string      `gorm:"type:varchar(1000);not null" json:"url"`                          // 商品来源链接
	ImageURLs        StringArray `gorm:"type:json" json:"image_urls"`                                     // 图片数组
	ShopName         *string     `gorm:"type:varchar(200)" json:"shop_name"`                              // 店铺名称
	Category         *string     `gorm:"type:varchar(100);index" json:"category"`                         // 分类
	Notes            *string     `gorm:"type:text" json:"notes"`                                          // 备注
	CreatedAt        time.Time   `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time   `json:"updated_at"`                                                      // 更新时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"` // 可选规格
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Summary 生成订单补全用的商品摘要
func (p *Product) Summary() *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{
		Title:    p.Title,
		ImageURL: p.ImageURLs.First(),
		URL:      p.URL,
	}
}

// ProductVariant 商品规格表
type ProductVariant struct {
	ID           uint      `gorm:"primarykey" json:"id"`                            // 主键
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                // 商品ID
	VariantName  string    `gorm:"type:varchar(100);not null" json:"variant_name"`  // 规格名称
	VariantValue string    `gorm:"type:varchar(200);not null" json:"variant_value"` // 规格值
	CreatedAt    time.Time `json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
