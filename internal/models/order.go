package models

import "time"

// Order 订单表
type Order struct {
	ID            uint        `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNumber   string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"` // 订单编号
	CustomerName  string      `gorm:"type:varchar(100);not null" json:"customer_name"`           // 客户姓名
	CustomerEmail *string     `gorm:"type:varchar(200)" json:"customer_email"`                   // 客户邮箱
	CustomerPhone *string     `gorm:"type:varchar(50)" json:"customer_phone"`                    // 客户电话
	TotalAmount   Money       `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`             // 订单状态
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time   `json:"updated_at"`                                                // 更新时间

	Items []OrderItem `gorm:"-" json:"items"` // 订单项（批量查询后组装）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
