package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const defaultOrderNumberPrefix = "ORD"

// generateOrderNumber 生成 <前缀>-<YYYYMMDD>-<4 位随机数>
func generateOrderNumber(prefix string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultOrderNumberPrefix
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), randSuffix(now))
}

func randSuffix(now time.Time) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return int64(now.Nanosecond() % 10000)
	}
	return n.Int64()
}
