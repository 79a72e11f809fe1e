package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo      repository.ProductRepository
	summaries *ProductSummaryLoader
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, summaryTTL time.Duration) *ProductService {
	return &ProductService{
		repo:      repo,
		summaries: NewProductSummaryLoader(repo, summaryTTL),
	}
}

// ProductInput 创建/更新商品输入，Variants 为 nil 表示更新时不动规格
type ProductInput struct {
	Title            string
	PriceJpyOriginal decimal.Decimal
	PriceJpySale     *decimal.Decimal
	PriceTwd         *decimal.Decimal
	Description      *string
	URL              string
	ImageURLs        []string
	ShopName         *string
	Category         *string
	Notes            *string
	Variants         []VariantInput
}

// List 获取商品列表（含规格）
func (s *ProductService) List(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		return []models.Product{}, nil
	}
	return products, nil
}

// Get 获取商品详情
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品，携带的规格在同一事务内写入
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	variants, err := buildProductVariants(input.Variants)
	if err != nil {
		return nil, err
	}
	product := &models.Product{Variants: variants}
	applyProductInput(product, input)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("product_created", "product_id", product.ID, "variants", len(variants))
	return s.Get(ctx, product.ID)
}

// AddVariants 为商品追加规格
func (s *ProductService) AddVariants(ctx context.Context, productID uint, inputs []VariantInput) ([]models.ProductVariant, error) {
	if len(inputs) == 0 {
		return nil, ErrProductVariantsEmpty
	}
	variants, err := buildProductVariants(inputs)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	for i := range variants {
		variants[i].ProductID = productID
	}
	if err := s.repo.CreateVariants(ctx, variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// Update 更新商品字段，提供规格时整体替换
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	var variants []models.ProductVariant
	if input.Variants != nil {
		built, err := buildProductVariants(input.Variants)
		if err != nil {
			return nil, err
		}
		variants = built
	}

	err := s.repo.Transaction(ctx, func(tx repository.ProductRepository) error {
		product, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		applyProductInput(product, input)
		product.Variants = nil
		if err := tx.Update(ctx, product); err != nil {
			return err
		}
		if input.Variants != nil {
			return tx.ReplaceVariants(ctx, id, variants)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.summaries.Invalidate(ctx, id)
	logger.Ctx(ctx).Infow("product_updated", "product_id", id)
	return s.Get(ctx, id)
}

// Delete 删除商品及其规格，被订单引用时返回 ErrProductInUse
func (s *ProductService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrProductInUse) {
		return false, ErrProductInUse
	}
	if err != nil {
		return false, err
	}
	if deleted {
		s.summaries.Invalidate(ctx, id)
		logger.Ctx(ctx).Infow("product_deleted", "product_id", id)
	}
	return deleted, nil
}

// DeleteVariant 删除单个规格
func (s *ProductService) DeleteVariant(ctx context.Context, variantID uint) (bool, error) {
	return s.repo.DeleteVariant(ctx, variantID)
}

// DeleteAllVariants 删除商品全部规格，商品不存在时返回 false
func (s *ProductService) DeleteAllVariants(ctx context.Context, productID uint) (bool, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, nil
	}
	if _, err := s.repo.DeleteVariantsByProduct(ctx, productID); err != nil {
		return false, err
	}
	return true, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrProductTitleRequired
	}
	if strings.TrimSpace(input.URL) == "" {
		return ErrProductURLRequired
	}
	if input.PriceJpyOriginal.IsNegative() {
		return ErrInvalidProductPrice
	}
	for _, price := range []*decimal.Decimal{input.PriceJpySale, input.PriceTwd} {
		if price != nil && price.IsNegative() {
			return ErrInvalidProductPrice
		}
	}
	return nil
}

func applyProductInput(product *models.Product, input ProductInput) {
	product.Title = strings.TrimSpace(input.Title)
	product.PriceJpyOriginal = models.NewMoneyFromDecimal(input.PriceJpyOriginal)
	product.PriceJpySale = models.NewMoneyPtr(input.PriceJpySale)
	product.PriceTwd = models.NewMoneyPtr(input.PriceTwd)
	product.Description = trimmedPtr(input.Description)
	product.URL = strings.TrimSpace(input.URL)
	product.ShopName = trimmedPtr(input.ShopName)
	product.Category = trimmedPtr(input.Category)
	product.Notes = trimmedPtr(input.Notes)

	images := make(models.StringArray, 0, len(input.ImageURLs))
	for _, url := range input.ImageURLs {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	product.ImageURLs = images
}

func buildProductVariants(inputs []VariantInput) ([]models.ProductVariant, error) {
	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		value := strings.TrimSpace(input.Value)
		if name == "" || value == "" {
			return nil, ErrInvalidVariant
		}
		variants = append(variants, models.ProductVariant{VariantName: name, VariantValue: value})
	}
	return variants, nil
}
