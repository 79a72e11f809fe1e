package crawler

import "strings"

var currencyAliases = map[string]string{
	"日幣":  "JPY",
	"日圓":  "JPY",
	"日元":  "JPY",
	"日円":  "JPY",
	"円":   "JPY",
	"日本円": "JPY",
	"美金":  "USD",
	"美元":  "USD",
	"人民幣": "CNY",
	"人民币": "CNY",
	"韓元":  "KRW",
	"韓幣":  "KRW",
	"歐元":  "EUR",
	"港幣":  "HKD",
	"港元":  "HKD",
	"英鎊":  "GBP",
	"台幣":  "TWD",
	"新台幣": "TWD",
}

// NormalizeCurrency 将页面上的币种标签转换为 ISO 代码
// 未收录的标签原样返回（去除首尾空白）。
func NormalizeCurrency(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	if code, ok := currencyAliases[trimmed]; ok {
		return code
	}
	upper := strings.ToUpper(trimmed)
	if len(upper) == 3 && isASCIIAlpha(upper) {
		return upper
	}
	return trimmed
}

func isASCIIAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
