package queue

import (
	"encoding/json"
	"fmt"

	"github.com/tiffc/backoffice/internal/constants"
	"github.com/tiffc/backoffice/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskCrawlAll 全来源汇率爬取任务
	TaskCrawlAll = constants.TaskExchangeRateCrawlAll
	// TaskCrawlSource 单来源汇率爬取任务
	TaskCrawlSource = constants.TaskExchangeRateCrawlSource
)

// CrawlSourcePayload 单来源爬取任务载荷
type CrawlSourcePayload struct {
	Source models.ExchangeRateSource `json:"source"`
}

// NewCrawlAllTask 创建全来源爬取任务
func NewCrawlAllTask() *asynq.Task {
	return asynq.NewTask(TaskCrawlAll, nil)
}

// NewCrawlSourceTask 创建单来源爬取任务
func NewCrawlSourceTask(payload CrawlSourcePayload) (*asynq.Task, error) {
	if !payload.Source.Valid() {
		return nil, fmt.Errorf("%w: crawl source %d", models.ErrUnknownEnumValue, int(payload.Source))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCrawlSource, body), nil
}

// ParseCrawlSourcePayload 解析单来源爬取任务载荷
func ParseCrawlSourcePayload(task *asynq.Task) (CrawlSourcePayload, error) {
	var payload CrawlSourcePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if !payload.Source.Valid() {
		return payload, fmt.Errorf("%w: crawl source %d", models.ErrUnknownEnumValue, int(payload.Source))
	}
	return payload, nil
}
