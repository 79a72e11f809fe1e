package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tiffc/backoffice/internal/config"
	"github.com/tiffc/backoffice/internal/logger"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultOrderNumberAttempts = 5

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	summaries      *ProductSummaryLoader
	numberPrefix   string
	numberAttempts int
	numberGen      func(prefix string, now time.Time) string
	now            func() time.Time
	enrichFailures atomic.Int64
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cfg config.OrderConfig) *OrderService {
	attempts := cfg.NumberMaxAttempts
	if attempts <= 0 {
		attempts = defaultOrderNumberAttempts
	}
	return &OrderService{
		orderRepo:      orderRepo,
		summaries:      NewProductSummaryLoader(productRepo, time.Duration(cfg.EnrichCacheTTLSeconds)*time.Second),
		numberPrefix:   cfg.NumberPrefix,
		numberAttempts: attempts,
		numberGen:      generateOrderNumber,
		now:            time.Now,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Status        models.OrderStatus
	Items         []CreateOrderItem
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	Variants  []VariantInput
}

// VariantInput 规格输入
type VariantInput struct {
	Name  string
	Value string
}

// UpdateOrderInput 更新订单输入，Status 为零值时保持原状态
type UpdateOrderInput struct {
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Status        models.OrderStatus
}

// CreateOrder 创建订单
// 订单头、订单项、规格在同一事务内写入，写入后按订单编号重新读取并补充商品信息。
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	customer, err := normalizeCustomer(input.CustomerName, input.CustomerEmail, input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == 0 {
		status = models.OrderStatusPendingPayment
	}
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	if err := validateOrderItems(input.Items); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range input.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	var orderNumber string
	for attempt := 1; attempt <= s.numberAttempts; attempt++ {
		orderNumber, err = s.nextOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		order := &models.Order{
			OrderNumber:   orderNumber,
			CustomerName:  customer.name,
			CustomerEmail: customer.email,
			CustomerPhone: customer.phone,
			TotalAmount:   models.NewMoneyFromDecimal(total),
			Status:        status,
		}
		err = s.orderRepo.Transaction(ctx, func(tx repository.OrderRepository) error {
			if err := ensureProductsExist(ctx, tx, input.Items); err != nil {
				return err
			}
			return writeOrder(ctx, tx, order, input.Items)
		})
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrOrderProductMissing
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Ctx(ctx).Warnw("order_number_collision", "order_number", orderNumber, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if err != nil {
		return nil, ErrOrderNumberExhausted
	}

	logger.Ctx(ctx).Infow("order_created", "order_number", orderNumber, "items", len(input.Items), "total_amount", total.StringFixed(2))
	return s.GetOrderByNumber(ctx, orderNumber)
}

// writeOrder 写入订单头，再按输入顺序写入订单项与对应规格
func writeOrder(ctx context.Context, repo repository.OrderRepository, order *models.Order, inputs []CreateOrderItem) error {
	if err := repo.CreateHeader(ctx, order); err != nil {
		return err
	}
	items := make([]models.OrderItem, 0, len(inputs))
	for _, input := range inputs {
		unitPrice := models.NewMoneyFromDecimal(input.UnitPrice)
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  models.NewMoneyFromDecimal(input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))),
		})
	}
	if err := repo.CreateItems(ctx, items); err != nil {
		return err
	}
	variants := make([]models.OrderItemVariant, 0)
	for i, input := range inputs {
		for _, v := range input.Variants {
			variants = append(variants, models.OrderItemVariant{
				OrderItemID:  items[i].ID,
				VariantName:  strings.TrimSpace(v.Name),
				VariantValue: strings.TrimSpace(v.Value),
			})
		}
	}
	return repo.CreateVariants(ctx, variants)
}

// nextOrderNumber 生成当前未被占用的订单编号，写入时仍以唯一索引兜底
func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.numberAttempts; attempt++ {
		candidate := s.numberGen(s.numberPrefix, s.now())
		count, err := s.orderRepo.CountByOrderNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", ErrOrderNumberExhausted
}

// GetOrderByNumber 按订单编号获取订单聚合
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.loadOne(ctx, order)
}

// GetOrder 按主键获取订单聚合
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.loadOne(ctx, order)
}

// ListOrders 获取订单聚合列表，按创建时间倒序
// 订单、订单项、规格各一次批量查询，在内存中分组。
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.Order{}, nil
	}
	if err := s.assemble(ctx, orders); err != nil {
		return nil, err
	}
	s.enrich(ctx, orders)
	return orders, nil
}

// UpdateOrder 更新客户资料与状态
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, input UpdateOrderInput) (*models.Order, error) {
	customer, err := normalizeCustomer(input.CustomerName, input.CustomerEmail, input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"customer_name":  customer.name,
		"customer_email": nullableString(customer.email),
		"customer_phone": nullableString(customer.phone),
		"updated_at":     s.now(),
	}
	if input.Status != 0 {
		if !input.Status.Valid() {
			return nil, ErrInvalidOrderStatus
		}
		updates["status"] = input.Status
	}
	found, err := s.orderRepo.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	logger.Ctx(ctx).Infow("order_updated", "order_id", id)
	return s.GetOrder(ctx, id)
}

// UpdateOrderStatus 更新订单状态，任意状态之间均可切换
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	found, err := s.orderRepo.UpdateFields(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	logger.Ctx(ctx).Infow("order_status_updated", "order_id", id, "status", status.String())
	return s.GetOrder(ctx, id)
}

// DeleteOrder 级联删除订单，不存在时返回 false
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Ctx(ctx).Infow("order_deleted", "order_id", id)
	}
	return deleted, nil
}

// EnrichFailures 商品信息补充失败次数
func (s *OrderService) EnrichFailures() int64 {
	return s.enrichFailures.Load()
}

func (s *OrderService) loadOne(ctx context.Context, order *models.Order) (*models.Order, error) {
	orders := []models.Order{*order}
	if err := s.assemble(ctx, orders); err != nil {
		return nil, err
	}
	s.enrich(ctx, orders)
	return &orders[0], nil
}

// assemble 批量读取订单项与规格并挂载到订单上
func (s *OrderService) assemble(ctx context.Context, orders []models.Order) error {
	orderIDs := make([]uint, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	items, err := s.orderRepo.ListItemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return err
	}
	itemIDs := make([]uint, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	variants, err := s.orderRepo.ListVariantsByItemIDs(ctx, itemIDs)
	if err != nil {
		return err
	}

	variantsByItem := make(map[uint][]models.OrderItemVariant, len(items))
	for _, v := range variants {
		variantsByItem[v.OrderItemID] = append(variantsByItem[v.OrderItemID], v)
	}
	itemsByOrder := make(map[uint][]models.OrderItem, len(orders))
	for _, item := range items {
		item.Variants = variantsByItem[item.ID]
		if item.Variants == nil {
			item.Variants = []models.OrderItemVariant{}
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return nil
}

// enrich 为订单项补充商品摘要，单个商品失败只记录日志
func (s *OrderService) enrich(ctx context.Context, orders []models.Order) {
	ids := make([]uint, 0)
	seen := make(map[uint]struct{})
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) == 0 {
		return
	}

	summaries, failed := s.summaries.Load(ctx, ids)
	for _, id := range failed {
		s.enrichFailures.Add(1)
		logger.Ctx(ctx).Warnw("order_enrich_product_failed", "product_id", id)
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].ProductInfo = summaries[orders[i].Items[j].ProductID]
		}
	}
}

// ensureProductsExist 在建单事务内校验订单项引用的商品全部存在，外键约束兜底并发删除
func ensureProductsExist(ctx context.Context, repo repository.OrderRepository, items []CreateOrderItem) error {
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	count, err := repo.CountProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrOrderProductMissing
	}
	return nil
}

type customerFields struct {
	name  string
	email *string
	phone *string
}

func normalizeCustomer(name string, email, phone *string) (customerFields, error) {
	fields := customerFields{name: strings.TrimSpace(name)}
	if fields.name == "" {
		return fields, ErrCustomerNameRequired
	}
	if value := trimmedPtr(email); value != nil {
		addr, err := mail.ParseAddress(*value)
		if err != nil || addr.Address != *value {
			return fields, ErrCustomerEmailInvalid
		}
		fields.email = value
	}
	fields.phone = trimmedPtr(phone)
	return fields, nil
}

func validateOrderItems(items []CreateOrderItem) error {
	if len(items) == 0 {
		return ErrOrderItemsRequired
	}
	for i, item := range items {
		if item.ProductID == 0 {
			return fmt.Errorf("%w: items[%d] product is required", ErrInvalidOrderItem, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d] quantity must be positive", ErrInvalidOrderItem, i)
		}
		if item.UnitPrice.IsNegative() || !item.UnitPrice.Equal(item.UnitPrice.Round(2)) {
			return fmt.Errorf("%w: items[%d]", ErrInvalidUnitPrice, i)
		}
		for _, v := range item.Variants {
			if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Value) == "" {
				return fmt.Errorf("%w: items[%d]", ErrInvalidVariant, i)
			}
		}
	}
	return nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
