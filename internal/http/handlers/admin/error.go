package admin

import (
	handlershared "github.com/tiffc/backoffice/internal/http/handlers/shared"
	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgBadRequest     = "請求參數錯誤"
	msgNotFound       = "找不到資源"
	msgConflict       = "資源衝突"
	msgInternalFailed = "伺服器內部錯誤"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackMsg string) {
	handlershared.RespondWithMappedError(c, err, concatMappedErrors(rules, kindErrorRules), response.CodeInternal, fallbackMsg)
}

func concatMappedErrors(groups ...[]handlershared.MappedError) []handlershared.MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]handlershared.MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// kindErrorRules 按错误类别兜底，放在具体规则之后
var kindErrorRules = []handlershared.MappedError{
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Msg: msgBadRequest},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Msg: msgNotFound},
	{Target: service.ErrConflict, Code: response.CodeConflict, Msg: msgConflict},
}

var orderErrorRules = []handlershared.MappedError{
	{Target: service.ErrCustomerNameRequired, Code: response.CodeBadRequest, Msg: "客戶姓名為必填"},
	{Target: service.ErrCustomerEmailInvalid, Code: response.CodeBadRequest, Msg: "電子郵件格式不正確"},
	{Target: service.ErrOrderItemsRequired, Code: response.CodeBadRequest, Msg: "訂單至少需要一個商品項目"},
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Msg: "訂單項目的商品與數量必須有效"},
	{Target: service.ErrInvalidUnitPrice, Code: response.CodeBadRequest, Msg: "單價必須為非負數且最多兩位小數"},
	{Target: service.ErrInvalidVariant, Code: response.CodeBadRequest, Msg: "規格名稱與規格值不可為空"},
	{Target: service.ErrInvalidOrderStatus, Code: response.CodeBadRequest, Msg: "訂單狀態不正確"},
	{Target: service.ErrOrderProductMissing, Code: response.CodeBadRequest, Msg: "訂單包含不存在的商品"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Msg: "找不到訂單"},
}

var productErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductTitleRequired, Code: response.CodeBadRequest, Msg: "商品名稱為必填"},
	{Target: service.ErrProductURLRequired, Code: response.CodeBadRequest, Msg: "商品連結為必填"},
	{Target: service.ErrInvalidProductPrice, Code: response.CodeBadRequest, Msg: "商品價格不可為負數"},
	{Target: service.ErrProductVariantsEmpty, Code: response.CodeBadRequest, Msg: "規格資料不可為空"},
	{Target: service.ErrInvalidVariant, Code: response.CodeBadRequest, Msg: "規格名稱與規格值不可為空"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Msg: "找不到商品"},
	{Target: service.ErrProductVariantMissing, Code: response.CodeNotFound, Msg: "找不到規格"},
	{Target: service.ErrProductInUse, Code: response.CodeConflict, Msg: "商品仍被訂單使用，無法刪除"},
}

var exchangeRateErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidHistoryDays, Code: response.CodeBadRequest, Msg: "查詢天數必須介於 1 到 365 天"},
	{Target: service.ErrInvalidCurrency, Code: response.CodeBadRequest, Msg: "幣別不可為空"},
	{Target: service.ErrInvalidSource, Code: response.CodeBadRequest, Msg: "匯率來源不正確"},
	{Target: service.ErrCrawlerNotFound, Code: response.CodeNotFound, Msg: "找不到該來源的爬蟲"},
}
