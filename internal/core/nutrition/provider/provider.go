package provider

import (
	"context"
	"time"

	"nutri-engine/internal/pkg/common"
)

// Client 營養資料供應商
// Lookup 回傳標準化後的每 100g 紀錄；查無資料時回傳 NoResultsError，
// 其餘失敗（網路、逾時、非 2xx）由呼叫端包成 ProviderError 重試
type Client interface {
	Name() string
	Lookup(ctx context.Context, term string) (*common.NutritionRecord, error)
}

// newRecord 建立標準化紀錄骨架；FetchedAt 於此刻定格，之後不再變更
func newRecord(name string, source common.Source) *common.NutritionRecord {
	return &common.NutritionRecord{
		ID:        common.GenerateUUID(),
		Name:      name,
		Source:    source,
		FetchedAt: time.Now(),
	}
}
