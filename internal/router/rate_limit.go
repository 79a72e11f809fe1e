package router

import (
	"fmt"
	"strings"

	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 固定窗口限流中间件，未配置 Redis 时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			logger.Ctx(c.Request.Context()).Warnw("rate_limit_unavailable", "key", key, "error", err)
			response.Error(c, response.CodeInternal, "限流服務暫時無法使用")
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			response.Error(c, response.CodeInternal, "限流服務暫時無法使用")
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			response.Error(c, response.CodeInternal, "限流服務暫時無法使用")
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			response.Error(c, response.CodeTooManyRequests, fmt.Sprintf("請求過於頻繁，請於 %d 秒後再試", waitSeconds))
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 使用 IP + 路径参数作为限流 key
func KeyByIPAndParam(name string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(c.Param(name)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
