package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray 字符串数组类型，用于存储图片地址等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 实现 sql.Scanner 接口，兼容 sqlite 返回 string 与 postgres 返回 []byte
func (s *StringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	if len(raw) == 0 {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// First 返回第一个元素，不存在时返回空字符串
func (s StringArray) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
