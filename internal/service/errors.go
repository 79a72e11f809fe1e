package service

import (
	"errors"
	"fmt"
)

// 错误类别，handler 据此映射 HTTP 状态码
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource conflict")
)

var (
	ErrCustomerNameRequired  = fmt.Errorf("%w: customer name is required", ErrValidation)
	ErrCustomerEmailInvalid  = fmt.Errorf("%w: customer email is invalid", ErrValidation)
	ErrOrderItemsRequired    = fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	ErrInvalidOrderItem      = fmt.Errorf("%w: invalid order item", ErrValidation)
	ErrInvalidUnitPrice      = fmt.Errorf("%w: unit price must be non-negative with at most 2 decimals", ErrValidation)
	ErrInvalidVariant        = fmt.Errorf("%w: variant name and value are required", ErrValidation)
	ErrInvalidOrderStatus    = fmt.Errorf("%w: invalid order status", ErrValidation)
	ErrOrderProductMissing   = fmt.Errorf("%w: referenced product does not exist", ErrValidation)
	ErrInvalidHistoryDays    = fmt.Errorf("%w: days must be between 1 and 365", ErrValidation)
	ErrInvalidCurrency       = fmt.Errorf("%w: currency is required", ErrValidation)
	ErrInvalidSource         = fmt.Errorf("%w: unknown exchange rate source", ErrValidation)
	ErrProductTitleRequired  = fmt.Errorf("%w: product title is required", ErrValidation)
	ErrProductURLRequired    = fmt.Errorf("%w: product url is required", ErrValidation)
	ErrInvalidProductPrice   = fmt.Errorf("%w: product price must be non-negative", ErrValidation)
	ErrProductVariantsEmpty  = fmt.Errorf("%w: at least one variant is required", ErrValidation)
	ErrOrderNotFound         = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrProductNotFound       = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrProductVariantMissing = fmt.Errorf("%w: product variant not found", ErrNotFound)
	ErrCrawlerNotFound       = fmt.Errorf("%w: no crawler registered for source", ErrNotFound)
	ErrProductInUse          = fmt.Errorf("%w: product is referenced by orders", ErrConflict)
	ErrOrderNumberExhausted  = errors.New("order number generation exhausted")
)
