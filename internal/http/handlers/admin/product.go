package admin

import (
	"strings"

	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/repository"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Title            string           `json:"title"`
	PriceJpyOriginal decimal.Decimal  `json:"price_jpy_original"`
	PriceJpySale     *decimal.Decimal `json:"price_jpy_sale"`
	PriceTwd         *decimal.Decimal `json:"price_twd"`
	Description      *string          `json:"description"`
	URL              string           `json:"url"`
	ImageURLs        []string         `json:"image_urls"`
	ShopName         *string          `json:"shop_name"`
	Category         *string          `json:"category"`
	Notes            *string          `json:"notes"`
	Variants         []VariantRequest `json:"variants"`
}

func (req ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Title:            req.Title,
		PriceJpyOriginal: req.PriceJpyOriginal,
		PriceJpySale:     req.PriceJpySale,
		PriceTwd:         req.PriceTwd,
		Description:      req.Description,
		URL:              req.URL,
		ImageURLs:        req.ImageURLs,
		ShopName:         req.ShopName,
		Category:         req.Category,
		Notes:            req.Notes,
		Variants:         toVariantInputs(req.Variants),
	}
}

// ListProducts 商品列表，支持 category 与 search
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.ProductService.List(c.Request.Context(), repository.ProductListFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "查詢商品失敗")
		return
	}
	response.Success(c, products)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgBadRequest, err)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "建立商品失敗")
		return
	}
	response.SuccessWithMsg(c, "商品建立成功", product)
}

// AddProductVariants 追加商品规格，请求体为规格数组
func (h *Handler) AddProductVariants(c *gin.Context) {
	id, ok := parseUintParam(c, "productId", "商品編號不正確")
	if !ok {
		return
	}
	var req []VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgBadRequest, err)
		return
	}
	variants, err := h.ProductService.AddVariants(c.Request.Context(), id, toVariantInputs(req))
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "新增規格失敗")
		return
	}
	response.SuccessWithMsg(c, "規格新增成功", variants)
}

// UpdateProduct 更新商品，未提供 variants 时保留原规格
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "productId", "商品編號不正確")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgBadRequest, err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "更新商品失敗")
		return
	}
	response.SuccessWithMsg(c, "商品更新成功", product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "productId", "商品編號不正確")
	if !ok {
		return
	}
	deleted, err := h.ProductService.Delete(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "刪除商品失敗")
		return
	}
	if !deleted {
		respondWithMappedError(c, service.ErrProductNotFound, productErrorRules, "刪除商品失敗")
		return
	}
	response.NoContent(c)
}

// DeleteProductVariant 删除单个规格
func (h *Handler) DeleteProductVariant(c *gin.Context) {
	id, ok := parseUintParam(c, "variantId", "規格編號不正確")
	if !ok {
		return
	}
	deleted, err := h.ProductService.DeleteVariant(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "刪除規格失敗")
		return
	}
	if !deleted {
		respondWithMappedError(c, service.ErrProductVariantMissing, productErrorRules, "刪除規格失敗")
		return
	}
	response.NoContent(c)
}

// DeleteAllProductVariants 删除商品全部规格
func (h *Handler) DeleteAllProductVariants(c *gin.Context) {
	id, ok := parseUintParam(c, "productId", "商品編號不正確")
	if !ok {
		return
	}
	found, err := h.ProductService.DeleteAllVariants(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, "刪除規格失敗")
		return
	}
	if !found {
		respondWithMappedError(c, service.ErrProductNotFound, productErrorRules, "刪除規格失敗")
		return
	}
	response.NoContent(c)
}
