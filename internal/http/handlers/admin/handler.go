package admin

import "github.com/tiffc/backoffice/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：商品、订单、汇率三组 API 共用同一处理器。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
