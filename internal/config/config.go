package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tiffc/backoffice/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Security     SecurityConfig     `mapstructure:"security"`
	Crawler      CrawlerConfig      `mapstructure:"crawler"`
	ExchangeRate ExchangeRateConfig `mapstructure:"exchange_rate"`
	Order        OrderConfig        `mapstructure:"order"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	return strings.TrimSpace(c.Host) + ":" + port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
// 托管 Postgres 可只填写 url 与密钥，由 ResolveDSN 组装连接串。
type DatabaseConfig struct {
	Driver     string             `mapstructure:"driver"`      // 数据库驱动（sqlite/postgres）
	DSN        string             `mapstructure:"dsn"`         // 数据库连接串
	URL        string             `mapstructure:"url"`         // 托管数据库地址
	AnonKey    string             `mapstructure:"anon_key"`    // 匿名访问密钥
	ServiceKey string             `mapstructure:"service_key"` // 服务端密钥（优先）
	Pool       DatabasePoolConfig `mapstructure:"pool"`
}

// Credential 返回连接凭据，服务端密钥优先于匿名密钥
func (c DatabaseConfig) Credential() string {
	if key := strings.TrimSpace(c.ServiceKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.AnonKey)
}

// ResolveDSN 解析最终连接串
func (c DatabaseConfig) ResolveDSN() (string, error) {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn, nil
	}
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return "", fmt.Errorf("database dsn and url are both empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url failed: %w", err)
	}
	if credential := c.Credential(); credential != "" {
		username := "postgres"
		if parsed.User != nil && parsed.User.Username() != "" {
			username = parsed.User.Username()
		}
		parsed.User = url.UserPassword(username, credential)
	}
	return parsed.String(), nil
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CrawlRateLimit RateLimitConfig `mapstructure:"crawl_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CrawlerConfig 汇率爬虫配置
type CrawlerConfig struct {
	UserAgent      string                         `mapstructure:"user_agent"`
	Accept         string                         `mapstructure:"accept"`
	AcceptLanguage string                         `mapstructure:"accept_language"`
	TimeoutSeconds int                            `mapstructure:"timeout_seconds"`
	Parallelism    int                            `mapstructure:"parallelism"`
	Schedule       string                         `mapstructure:"schedule"` // asynq cron 表达式，空字符串表示不定时
	Sources        map[string]CrawlerSourceConfig `mapstructure:"sources"`
}

// CrawlerSourceConfig 单个来源配置
type CrawlerSourceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// SourceURL 获取来源地址，未配置时返回 fallback
func (c CrawlerConfig) SourceURL(name, fallback string) string {
	source, ok := c.Sources[strings.ToLower(strings.TrimSpace(name))]
	if !ok || strings.TrimSpace(source.URL) == "" {
		return fallback
	}
	return strings.TrimSpace(source.URL)
}

// SourceEnabled 来源是否启用，未配置时默认启用
func (c CrawlerConfig) SourceEnabled(name string) bool {
	source, ok := c.Sources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return true
	}
	return source.Enabled
}

// ExchangeRateConfig 汇率查询配置
type ExchangeRateConfig struct {
	LatestBySourceLimit   int `mapstructure:"latest_by_source_limit"`
	HistoryDefaultDays    int `mapstructure:"history_default_days"`
	HistoryMaxDays        int `mapstructure:"history_max_days"`
	LatestCacheTTLSeconds int `mapstructure:"latest_cache_ttl_seconds"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	NumberPrefix          string `mapstructure:"number_prefix"`
	NumberMaxAttempts     int    `mapstructure:"number_max_attempts"`
	EnrichCacheTTLSeconds int    `mapstructure:"enrich_cache_ttl_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults(viper.GetViper())

	// 环境变量支持（例如 database.service_key -> DATABASE_SERVICE_KEY）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/backoffice.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.anon_key", "")
	v.SetDefault("database.service_key", "")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "bo")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"default": 5,
		"crawler": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.crawl_rate_limit.window_seconds", 60)
	v.SetDefault("security.crawl_rate_limit.max_requests", 5)
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("crawler.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	v.SetDefault("crawler.accept_language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	v.SetDefault("crawler.timeout_seconds", 20)
	v.SetDefault("crawler.parallelism", 2)
	v.SetDefault("crawler.schedule", "@every 6h")
	v.SetDefault("crawler.sources", map[string]interface{}{
		"letao":  map[string]interface{}{"enabled": true, "url": "https://www.letao.com.tw/"},
		"bibian": map[string]interface{}{"enabled": true, "url": "https://www.bibian.co.jp/buy/"},
	})
	v.SetDefault("exchange_rate.latest_by_source_limit", 10)
	v.SetDefault("exchange_rate.history_default_days", 30)
	v.SetDefault("exchange_rate.history_max_days", 365)
	v.SetDefault("exchange_rate.latest_cache_ttl_seconds", 300)
	v.SetDefault("order.number_prefix", "ORD")
	v.SetDefault("order.number_max_attempts", 5)
	v.SetDefault("order.enrich_cache_ttl_seconds", 600)
}
