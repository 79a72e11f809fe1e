package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一成功响应结构
type Response struct {
	StatusCode int         `json:"status_code"` // 业务状态码，成功为 0
	Message    string      `json:"message"`     // 提示消息
	Data       interface{} `json:"data"`        // 数据内容
}

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`          // 与 HTTP 状态码一致
	Message    string `json:"message"`              // 提示消息
	Error      string `json:"error,omitempty"`      // 内部错误详情，仅 500 返回
	RequestID  string `json:"request_id,omitempty"` // 请求 ID
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMsg(c, "success", data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: CodeOK,
		Message:    msg,
		Data:       data,
	})
}

// NoContent 删除成功等无返回体的响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应，业务码即 HTTP 状态码
func Error(c *gin.Context, code int, msg string) {
	ErrorWithDetail(c, code, msg, "")
}

// ErrorWithDetail 错误响应（附带错误详情）
func ErrorWithDetail(c *gin.Context, code int, msg string, detail string) {
	c.AbortWithStatusJSON(httpStatus(code), ErrorResponse{
		StatusCode: code,
		Message:    msg,
		Error:      detail,
		RequestID:  requestID(c),
	})
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

func httpStatus(code int) int {
	if code < http.StatusBadRequest || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
