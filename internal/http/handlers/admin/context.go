package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/tiffc/backoffice/internal/http/handlers/shared"
	"github.com/tiffc/backoffice/internal/http/response"

	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, name, invalidMsg string) (uint, bool) {
	return handlershared.ParseUintParam(c, name, invalidMsg)
}

// queryBool 解析 1/true/yes 形式的布尔查询参数
func queryBool(c *gin.Context, key string) bool {
	raw := strings.ToLower(strings.TrimSpace(c.Query(key)))
	if raw == "yes" {
		return true
	}
	value, err := strconv.ParseBool(raw)
	return err == nil && value
}

// parsePageQuery 解析 page/page_size，缺省为 0
func parsePageQuery(c *gin.Context) (int, int, bool) {
	page, ok := queryInt(c, "page")
	if !ok {
		return 0, 0, false
	}
	pageSize, ok := queryInt(c, "page_size")
	if !ok {
		return 0, 0, false
	}
	return page, pageSize, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		response.BadRequest(c, msgBadRequest)
		return 0, false
	}
	return value, true
}
