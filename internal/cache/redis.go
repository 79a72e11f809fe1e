package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tiffc/backoffice/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client
var redisPrefix string
var redisEnabled bool

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "bo"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		redisEnabled = false
		return fmt.Errorf("redis ping failed: %w", err)
	}
	Use(client, prefix)
	return nil
}

// Use 直接注入 Redis 客户端
func Use(client *redis.Client, prefix string) {
	redisClient = client
	redisPrefix = strings.TrimSpace(prefix)
	redisEnabled = client != nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// Prefix 获取 key 前缀
func Prefix() string {
	return redisPrefix
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	if !Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, buildKey(key))
	}
	return redisClient.Del(ctx, full...).Err()
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if redisPrefix == "" {
		return trimmed
	}
	if trimmed == "" {
		return redisPrefix
	}
	return fmt.Sprintf("%s:%s", redisPrefix, trimmed)
}
