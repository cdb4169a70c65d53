package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NormalizeTerm 將查詢字串轉為標準鍵：轉小寫、去頭尾空白、內部連續空白合併為單一空格
// 快取讀寫與 singleflight 共用同一把鍵，必須在兩邊套用一致
func NormalizeTerm(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), " ")
}

// FloatPtr 回傳 float64 指標（微量營養素欄位用）
func FloatPtr(v float64) *float64 {
	return &v
}

// ClampNonNegative 負值夾至 0，維持營養紀錄欄位 ≥ 0 的不變量
func ClampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
