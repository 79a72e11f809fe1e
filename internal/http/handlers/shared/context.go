package shared

import (
	"strconv"
	"strings"

	"github.com/tiffc/backoffice/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParseUintParam 解析路径中的正整数 ID，失败时直接返回 400。
func ParseUintParam(c *gin.Context, name, invalidMsg string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidMsg, nil)
		return 0, false
	}
	return uint(id), true
}
