package shared

import (
	"errors"

	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
// 仅 5xx 响应携带错误详情。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.ErrorWithDetail(c, appErr.Code, appErr.Message, appErr.Detail())
}

// MappedError 业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Msg    string
}

// RespondWithMappedError 按规则映射错误，未命中时使用兜底状态码与消息。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Msg, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}
