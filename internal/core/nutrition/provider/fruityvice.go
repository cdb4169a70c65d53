package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nutri-engine/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Fruityvice 主要供應商。回傳即為每 100g 數值，欄位名稱仍需映射
type Fruityvice struct {
	client *resty.Client
}

// NewFruityvice 建立 Fruityvice 客戶端
func NewFruityvice(baseURL string, timeout time.Duration) *Fruityvice {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Fruityvice{client: client}
}

// Name 供應商名稱
func (f *Fruityvice) Name() string {
	return string(common.SourceFruityvice)
}

// fruityvicePayload Fruityvice 回應結構
type fruityvicePayload struct {
	Name       string `json:"name"`
	Family     string `json:"family"`
	Nutritions struct {
		Calories      float64 `json:"calories"`
		Fat           float64 `json:"fat"`
		Sugar         float64 `json:"sugar"`
		Carbohydrates float64 `json:"carbohydrates"`
		Protein       float64 `json:"protein"`
	} `json:"nutritions"`
}

// Lookup 查詢單一水果
func (f *Fruityvice) Lookup(ctx context.Context, term string) (*common.NutritionRecord, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get("/api/fruit/" + url.PathEscape(strings.ToLower(strings.TrimSpace(term))))

	if err != nil {
		return nil, fmt.Errorf("fruityvice request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.NewNoResultsError(f.Name(), term)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fruityvice returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var payload fruityvicePayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse fruityvice response: %w", err)
	}
	if payload.Name == "" {
		return nil, common.NewNoResultsError(f.Name(), term)
	}

	return normalizeFruityvice(&payload), nil
}

// normalizeFruityvice 映射 Fruityvice 欄位至標準紀錄
func normalizeFruityvice(p *fruityvicePayload) *common.NutritionRecord {
	rec := newRecord(strings.ToLower(p.Name), common.SourceFruityvice)
	rec.Calories = common.ClampNonNegative(p.Nutritions.Calories)
	rec.Fat = common.ClampNonNegative(p.Nutritions.Fat)
	rec.Sugar = common.ClampNonNegative(p.Nutritions.Sugar)
	rec.Carbs = common.ClampNonNegative(p.Nutritions.Carbohydrates)
	rec.Protein = common.ClampNonNegative(p.Nutritions.Protein)
	rec.Metadata = common.RecordMetadata{
		OriginalServingSize: 100,
		OriginalServingUnit: "g",
		Category:            p.Family,
	}
	return rec
}
