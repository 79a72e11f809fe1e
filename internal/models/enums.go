package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownEnumValue 无法识别的枚举值
var ErrUnknownEnumValue = errors.New("unknown enum value")

// ExchangeRateSource 汇率来源
type ExchangeRateSource int

const (
	ExchangeRateSourceNone   ExchangeRateSource = 0
	ExchangeRateSourceLetao  ExchangeRateSource = 1
	ExchangeRateSourceBibian ExchangeRateSource = 2
)

var exchangeRateSourceNames = map[ExchangeRateSource]string{
	ExchangeRateSourceNone:   "None",
	ExchangeRateSourceLetao:  "Letao",
	ExchangeRateSourceBibian: "Bibian",
}

// ExchangeRateSources 返回所有可爬取的来源
func ExchangeRateSources() []ExchangeRateSource {
	return []ExchangeRateSource{ExchangeRateSourceLetao, ExchangeRateSourceBibian}
}

// ParseExchangeRateSource 解析来源名称（不区分大小写）或数字编码
func ParseExchangeRateSource(raw string) (ExchangeRateSource, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ExchangeRateSourceNone, fmt.Errorf("%w: empty exchange rate source", ErrUnknownEnumValue)
	}
	if code, err := strconv.Atoi(value); err == nil {
		source := ExchangeRateSource(code)
		if _, ok := exchangeRateSourceNames[source]; ok {
			return source, nil
		}
		return ExchangeRateSourceNone, fmt.Errorf("%w: exchange rate source %d", ErrUnknownEnumValue, code)
	}
	for source, name := range exchangeRateSourceNames {
		if strings.EqualFold(name, value) {
			return source, nil
		}
	}
	return ExchangeRateSourceNone, fmt.Errorf("%w: exchange rate source %q", ErrUnknownEnumValue, value)
}

// Valid 是否为可爬取的来源
func (s ExchangeRateSource) Valid() bool {
	_, ok := exchangeRateSourceNames[s]
	return ok && s != ExchangeRateSourceNone
}

// String 返回来源名称
func (s ExchangeRateSource) String() string {
	if name, ok := exchangeRateSourceNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// MarshalText 序列化为来源名称
func (s ExchangeRateSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 从名称或编码反序列化
func (s *ExchangeRateSource) UnmarshalText(text []byte) error {
	parsed, err := ParseExchangeRateSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value 用于数据库写入
func (s ExchangeRateSource) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan 用于数据库读取
func (s *ExchangeRateSource) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ExchangeRateSourceNone
		return nil
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case int64:
		*s = ExchangeRateSource(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into ExchangeRateSource", ErrUnknownEnumValue, value)
	}
}

// OrderStatus 订单状态，数字编码与前端约定一致
type OrderStatus int

const (
	OrderStatusPendingPayment OrderStatus = 1
	OrderStatusPaid           OrderStatus = 2
	OrderStatusProcessing     OrderStatus = 3
	OrderStatusShipped        OrderStatus = 4
	OrderStatusCompleted      OrderStatus = 5
	OrderStatusCanceled       OrderStatus = 6
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPendingPayment: "待付款",
	OrderStatusPaid:           "已付款",
	OrderStatusProcessing:     "處理中",
	OrderStatusShipped:        "已出貨",
	OrderStatusCompleted:      "已完成",
	OrderStatusCanceled:       "已取消",
}

// ParseOrderStatus 解析状态标签或数字编码
func ParseOrderStatus(raw string) (OrderStatus, error) {
	value := strings.TrimSpace(raw)
	if code, err := strconv.Atoi(value); err == nil {
		status := OrderStatus(code)
		if status.Valid() {
			return status, nil
		}
		return 0, fmt.Errorf("%w: order status %d", ErrUnknownEnumValue, code)
	}
	for status, label := range orderStatusLabels {
		if label == value {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: order status %q", ErrUnknownEnumValue, value)
}

// Valid 是否为已定义状态
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// String 返回状态标签
func (s OrderStatus) String() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return strconv.Itoa(int(s))
}

// MarshalJSON 输出状态标签
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 支持标签字符串或数字编码
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" {
		*s = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		trimmed = text
	}
	parsed, err := ParseOrderStatus(trimmed)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value 用于数据库写入
func (s OrderStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan 用于数据库读取
func (s *OrderStatus) Scan(value interface{}) error {
	var text string
	switch v := value.(type) {
	case nil:
		*s = 0
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		*s = OrderStatus(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into OrderStatus", ErrUnknownEnumValue, value)
	}
	parsed, err := ParseOrderStatus(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
