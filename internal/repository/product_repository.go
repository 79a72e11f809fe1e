package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/tiffc/backoffice/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(ctx context.Context, filter ProductListFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	CreateVariants(ctx context.Context, variants []models.ProductVariant) error
	ReplaceVariants(ctx context.Context, productID uint, variants []models.ProductVariant) error
	DeleteVariant(ctx context.Context, variantID uint) (bool, error)
	DeleteVariantsByProduct(ctx context.Context, productID uint) (int64, error)
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func withVariants(query *gorm.DB) *gorm.DB {
	return query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// List 商品列表，按创建时间倒序
func (r *GormProductRepository) List(ctx context.Context, filter ProductListFilter) ([]models.Product, error) {
	products := make([]models.Product, 0)
	query := withVariants(r.db.WithContext(ctx).Model(&models.Product{}))
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		if isPostgresDialect(dbDialectName(r.db)) {
			query = query.Where("title ILIKE ? OR shop_name ILIKE ?", like, like)
		} else {
			query = query.Where("title LIKE ? OR shop_name LIKE ?", like, like)
		}
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID 根据 ID 获取商品（含规格）
func (r *GormProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := withVariants(r.db.WithContext(ctx)).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品（不含规格）
func (r *GormProductRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品，携带的规格一并写入
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update 更新商品头字段（不处理规格）
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Variants", "CreatedAt").Save(product).Error
}

// Delete 删除商品及其规格；被订单项引用时返回 ErrProductInUse
func (r *GormProductRepository) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrProductInUse
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Product{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return false, ErrProductInUse
	}
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CreateVariants 批量新增规格
func (r *GormProductRepository) CreateVariants(ctx context.Context, variants []models.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

// ReplaceVariants 用新列表替换商品全部规格
func (r *GormProductRepository) ReplaceVariants(ctx context.Context, productID uint, variants []models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	for i := range variants {
		variants[i].ID = 0
		variants[i].ProductID = productID
	}
	return r.CreateVariants(ctx, variants)
}

// DeleteVariant 删除单个规格
func (r *GormProductRepository) DeleteVariant(ctx context.Context, variantID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", variantID).Delete(&models.ProductVariant{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteVariantsByProduct 删除商品全部规格，返回删除数量
func (r *GormProductRepository) DeleteVariantsByProduct(ctx context.Context, productID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductVariant{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
