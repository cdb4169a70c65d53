package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutri-engine/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Ninjas 次要供應商（API Ninjas 風格的營養搜尋）
// 回傳以實際份量計，不做單位換算：數值照收，份量資訊保留在 metadata
// （已知限制，非靜默修正）
type Ninjas struct {
	client *resty.Client
}

// NewNinjas 建立 API Ninjas 客戶端
func NewNinjas(baseURL, apiKey string, timeout time.Duration) *Ninjas {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", apiKey)

	return &Ninjas{client: client}
}

// Name 供應商名稱
func (n *Ninjas) Name() string {
	return string(common.SourceNinjas)
}

// ninjasItem API Ninjas 回應項目
type ninjasItem struct {
	Name          string  `json:"name"`
	Calories      float64 `json:"calories"`
	ServingSizeG  float64 `json:"serving_size_g"`
	FatTotalG     float64 `json:"fat_total_g"`
	ProteinG      float64 `json:"protein_g"`
	PotassiumMg   float64 `json:"potassium_mg"`
	CarbohydrateG float64 `json:"carbohydrates_total_g"`
	FiberG        float64 `json:"fiber_g"`
	SugarG        float64 `json:"sugar_g"`
}

// Lookup 查詢營養資料，取第一筆結果
func (n *Ninjas) Lookup(ctx context.Context, term string) (*common.NutritionRecord, error) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParam("query", strings.TrimSpace(term)).
		Get("/v1/nutrition")

	if err != nil {
		return nil, fmt.Errorf("ninjas request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ninjas returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var items []ninjasItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to parse ninjas response: %w", err)
	}
	if len(items) == 0 {
		return nil, common.NewNoResultsError(n.Name(), term)
	}

	return normalizeNinjas(&items[0]), nil
}

// normalizeNinjas 映射 API Ninjas 欄位至標準紀錄
func normalizeNinjas(item *ninjasItem) *common.NutritionRecord {
	name := strings.ToLower(item.Name)
	rec := newRecord(name, common.SourceNinjas)
	rec.Calories = common.ClampNonNegative(item.Calories)
	rec.Fat = common.ClampNonNegative(item.FatTotalG)
	rec.Protein = common.ClampNonNegative(item.ProteinG)
	rec.Carbs = common.ClampNonNegative(item.CarbohydrateG)
	rec.Fiber = common.ClampNonNegative(item.FiberG)
	rec.Sugar = common.ClampNonNegative(item.SugarG)
	if item.PotassiumMg > 0 {
		rec.Potassium = common.FloatPtr(item.PotassiumMg)
	}
	rec.Metadata = common.RecordMetadata{
		OriginalServingSize: item.ServingSizeG,
		OriginalServingUnit: "g",
		IsDried:             strings.Contains(name, "dried"),
	}
	return rec
}
