package admin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tiffc/backoffice/internal/http/response"
	"github.com/tiffc/backoffice/internal/models"
	"github.com/tiffc/backoffice/internal/queue"
	"github.com/tiffc/backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

// CrawlResult 单来源爬取结果
type CrawlResult struct {
	Source models.ExchangeRateSource `json:"source"`
	Count  int                       `json:"count"`
}

// CrawlQueued 异步爬取投递结果
type CrawlQueued struct {
	TaskID string `json:"task_id"`
}

// CrawlAllExchangeRates 爬取全部来源，async=1 且队列可用时改为投递任务
func (h *Handler) CrawlAllExchangeRates(c *gin.Context) {
	if queueClientReady(h.QueueClient) && queryBool(c, "async") {
		taskID, err := h.QueueClient.EnqueueCrawlAll()
		if err != nil {
			respondError(c, response.CodeInternal, "投遞爬取任務失敗", err)
			return
		}
		requestLog(c).Infow("crawl_task_enqueued", "task_id", taskID)
		response.SuccessWithMsg(c, "已排入爬取佇列", CrawlQueued{TaskID: taskID})
		return
	}
	summary := h.ExchangeRateService.CrawlAll(c.Request.Context())
	response.SuccessWithMsg(c, "匯率爬取完成", summary)
}

// CrawlExchangeRateSource 爬取单一来源
func (h *Handler) CrawlExchangeRateSource(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("source"))
	source, err := models.ParseExchangeRateSource(raw)
	if err != nil || !source.Valid() {
		response.NotFound(c, fmt.Sprintf("找不到來源 %s 的爬蟲", raw))
		return
	}
	if queueClientReady(h.QueueClient) && queryBool(c, "async") {
		taskID, err := h.QueueClient.EnqueueCrawlSource(queue.CrawlSourcePayload{Source: source})
		if err != nil {
			respondError(c, response.CodeInternal, "投遞爬取任務失敗", err)
			return
		}
		requestLog(c).Infow("crawl_task_enqueued", "task_id", taskID, "source", source.String())
		response.SuccessWithMsg(c, "已排入爬取佇列", CrawlQueued{TaskID: taskID})
		return
	}
	count, err := h.ExchangeRateService.CrawlSource(c.Request.Context(), source)
	if err != nil {
		respondWithMappedError(c, err, exchangeRateErrorRules, "爬取匯率失敗")
		return
	}
	response.SuccessWithMsg(c, fmt.Sprintf("成功爬取 %d 筆匯率", count), CrawlResult{Source: source, Count: count})
}

// GetLatestExchangeRates 每个来源、币种最新一笔
func (h *Handler) GetLatestExchangeRates(c *gin.Context) {
	rates, err := h.ExchangeRateService.GetAllLatest(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, exchangeRateErrorRules, "查詢最新匯率失敗")
		return
	}
	response.Success(c, rates)
}

// GetLatestExchangeRatesBySource 指定来源最近的记录
func (h *Handler) GetLatestExchangeRatesBySource(c *gin.Context) {
	source, ok := parseSourceParam(c)
	if !ok {
		return
	}
	rates, err := h.ExchangeRateService.GetLatestBySource(c.Request.Context(), source)
	if err != nil {
		respondWithMappedError(c, err, exchangeRateErrorRules, "查詢最新匯率失敗")
		return
	}
	response.Success(c, rates)
}

// GetExchangeRateHistory 历史汇率，days 缺省时使用默认天数
func (h *Handler) GetExchangeRateHistory(c *gin.Context) {
	source, ok := parseSourceParam(c)
	if !ok {
		return
	}
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithMappedError(c, service.ErrInvalidHistoryDays, exchangeRateErrorRules, "查詢歷史匯率失敗")
			return
		}
		days = parsed
	}
	rates, err := h.ExchangeRateService.GetHistory(c.Request.Context(), source, c.Param("currency"), days)
	if err != nil {
		respondWithMappedError(c, err, exchangeRateErrorRules, "查詢歷史匯率失敗")
		return
	}
	response.Success(c, rates)
}

func parseSourceParam(c *gin.Context) (models.ExchangeRateSource, bool) {
	source, err := models.ParseExchangeRateSource(c.Param("source"))
	if err != nil || !source.Valid() {
		response.BadRequest(c, "匯率來源不正確")
		return models.ExchangeRateSourceNone, false
	}
	return source, true
}

func queueClientReady(client *queue.Client) bool {
	return client != nil && client.Enabled()
}
