package repository

import (
	"context"
	"errors"

	"github.com/tiffc/backoffice/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
// 订单头、订单项、规格分表存储，聚合由服务层通过批量查询组装。
type OrderRepository interface {
	CreateHeader(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	CreateVariants(ctx context.Context, variants []models.OrderItemVariant) error
	CountByOrderNumber(ctx context.Context, orderNumber string) (int64, error)
	CountProductsByIDs(ctx context.Context, productIDs []uint) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]models.Order, error)
	ListItemsByOrderIDs(ctx context.Context, orderIDs []uint) ([]models.OrderItem, error)
	ListVariantsByItemIDs(ctx context.Context, itemIDs []uint) ([]models.OrderItemVariant, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Transaction(ctx context.Context, fn func(repo OrderRepository) error) error
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务，回调内的仓库共享同一事务
func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(repo OrderRepository) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// CreateHeader 写入订单头并回填 ID
func (r *GormOrderRepository) CreateHeader(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateItems 按输入顺序写入订单项并回填 ID
func (r *GormOrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// CreateVariants 批量写入订单项规格
func (r *GormOrderRepository) CreateVariants(ctx context.Context, variants []models.OrderItemVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

// CountByOrderNumber 统计订单编号数量
func (r *GormOrderRepository) CountByOrderNumber(ctx context.Context, orderNumber string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", orderNumber).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountProductsByIDs 在当前连接（或事务）内统计存在的商品数量
func (r *GormOrderRepository) CountProductsByIDs(ctx context.Context, productIDs []uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", productIDs).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByID 根据 ID 获取订单头
func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNumber 根据订单编号获取订单头
func (r *GormOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 获取订单头列表，按创建时间倒序
func (r *GormOrderRepository) List(ctx context.Context, filter OrderListFilter) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status.Valid() {
		query = query.Where("status = ?", filter.Status)
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListItemsByOrderIDs 批量获取订单项，按 ID 升序保持写入顺序
func (r *GormOrderRepository) ListItemsByOrderIDs(ctx context.Context, orderIDs []uint) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	if len(orderIDs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListVariantsByItemIDs 批量获取订单项规格
func (r *GormOrderRepository) ListVariantsByItemIDs(ctx context.Context, itemIDs []uint) ([]models.OrderItemVariant, error) {
	variants := make([]models.OrderItemVariant, 0)
	if len(itemIDs) == 0 {
		return variants, nil
	}
	if err := r.db.WithContext(ctx).Where("order_item_id IN ?", itemIDs).Order("id ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// UpdateFields 按主键更新订单头字段，返回是否命中
func (r *GormOrderRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (bool, error) {
	if len(updates) == 0 {
		order, err := r.GetByID(ctx, id)
		return order != nil, err
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 级联删除订单：规格 -> 订单项 -> 订单头，在同一事务内完成
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.OrderItem{}).Select("id").Where("order_id = ?", id)
		if err := tx.Where("order_item_id IN (?)", itemIDs).Delete(&models.OrderItemVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Order{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
