package admin

import (
	"strings"

	handlershared "github.com/tiffc/backoffice/internal/http/handlers/shared"
	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/repository"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// VariantRequest 规格请求
type VariantRequest struct {
	VariantName  string `json:"variant_name"`
	VariantValue string `json:"variant_value"`
}

// CreateOrderItemRequest 订单项请求
type CreateOrderItemRequest struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Variants  []VariantRequest `json:"variants"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerEmail *string                  `json:"customer_email"`
	CustomerPhone *string                  `json:"customer_phone"`
	Status        models.OrderStatus       `json:"status"`
	Items         []CreateOrderItemRequest `json:"items"`
}

// UpdateOrderRequest 更新订单请求
type UpdateOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail *string            `json:"customer_email"`
	CustomerPhone *string            `json:"customer_phone"`
	Status        models.OrderStatus `json:"status"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgBadRequest, err)
		return
	}
	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Variants:  toVariantInputs(item.Variants),
		})
	}
	order, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        req.Status,
		Items:         items,
	})
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "建立訂單失敗")
		return
	}
	response.SuccessWithMsg(c, "訂單建立成功", order)
}

// GetOrderByNumber 按订单编号查询
func (h *Handler) GetOrderByNumber(c *gin.Context) {
	order, err := h.OrderService.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "查詢訂單失敗")
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	filter := repository.OrderListFilter{}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			respondWithMappedError(c, service.ErrInvalidOrderStatus, orderErrorRules, "查詢訂單失敗")
			return
		}
		filter.Status = status
	}
	page, pageSize, ok := parsePageQuery(c)
	if !ok {
		return
	}
	filter.Page, filter.PageSize = handlershared.NormalizePagination(page, pageSize)

	orders, err := h.OrderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "查詢訂單失敗")
		return
	}
	response.Success(c, orders)
}

// UpdateOrder 更新订单客户资料与状态
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "orderId", "訂單編號不正確")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgBadRequest, err)
		return
	}
	order, err := h.OrderService.UpdateOrder(c.Request.Context(), id, service.UpdateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        req.Status,
	})
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "更新訂單失敗")
		return
	}
	response.SuccessWithMsg(c, "訂單更新成功", order)
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "orderId", "訂單編號不正確")
	if !ok {
		return
	}
	status, err := models.ParseOrderStatus(c.Param("status"))
	if err != nil {
		respondWithMappedError(c, service.ErrInvalidOrderStatus, orderErrorRules, "更新訂單狀態失敗")
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "更新訂單狀態失敗")
		return
	}
	response.SuccessWithMsg(c, "訂單狀態更新成功", order)
}

// DeleteOrder 删除订单
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "orderId", "訂單編號不正確")
	if !ok {
		return
	}
	deleted, err := h.OrderService.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "刪除訂單失敗")
		return
	}
	if !deleted {
		respondWithMappedError(c, service.ErrOrderNotFound, orderErrorRules, "刪除訂單失敗")
		return
	}
	response.NoContent(c)
}

func toVariantInputs(reqs []VariantRequest) []service.VariantInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]service.VariantInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, service.VariantInput{Name: req.VariantName, Value: req.VariantValue})
	}
	return inputs
}
