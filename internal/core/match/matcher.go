package match

import (
	"fmt"
	"strings"

	"nutri-engine/internal/core/safety"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"
)

// 各配對層級的固定分數（依層級指定，不計算）
const (
	scoreExact   = 100.0
	scoreSynonym = 95.0
	scorePartial = 80.0
	scoreNone    = 0.0
)

// 可用狀態
const (
	availabilityInStock    = "in_stock"
	availabilityOutOfStock = "out_of_stock"
	availabilityPreorder   = "preorder"
	availabilitySeasonal   = "seasonal"
)

// 商品名稱中的處理方式描述詞，配對前剝除
// （"Dried Kiwi" 與 "kiwi" 視為同名；乾燥狀態保留在紀錄 metadata）
var preparationDescriptors = map[string]bool{
	"dried":   true,
	"fresh":   true,
	"frozen":  true,
	"organic": true,
	"natural": true,
	"raw":     true,
	"sliced":  true,
	"whole":   true,
}

// Matcher 水果配對器，對一份目錄快照建構一次
// 建構時預先計算每項商品的營養輪廓（名稱導出）與可用狀態（badge 導出）
type Matcher struct {
	catalog         []common.Product
	includeSynonyms bool
	minSimilarity   float64
	nutrition       map[string]fruitNutrition // product ID → 營養輪廓
	availability    map[string]string         // product ID → 可用狀態
}

// NewMatcher 建立配對器
func NewMatcher(cfg *config.MatchConfig, catalog []common.Product) *Matcher {
	m := &Matcher{
		catalog:         catalog,
		includeSynonyms: cfg.IncludeSynonyms,
		minSimilarity:   cfg.MinSimilarityThreshold,
		nutrition:       make(map[string]fruitNutrition, len(catalog)),
		availability:    make(map[string]string, len(catalog)),
	}

	for _, p := range catalog {
		n, _ := lookupNutrition(p.Name)
		m.nutrition[p.ID] = n
		m.availability[p.ID] = availabilityFromBadge(p.Badge)
	}

	return m
}

// MatchFruitToProduct 依嚴格優先序配對：精確 → 同義詞 → 部分包含 → NONE
// 分數依層級固定：EXACT=100、SYNONYM=95、PARTIAL=80、NONE=0
func (m *Matcher) MatchFruitToProduct(term string) common.FruitMatchResult {
	query := normalizeName(term)
	if query == "" {
		return noMatch("empty query")
	}

	// 1. 精確名稱相等（不分大小寫與空白，剝除處理方式描述詞）
	for i := range m.catalog {
		p := &m.catalog[i]
		if normalizeName(p.Name) == query {
			return m.result(p, common.MatchTypeExact, scoreExact,
				fmt.Sprintf("%q exactly matches %q", term, p.Name))
		}
	}

	// 2. 同義詞表（雙向）
	if m.includeSynonyms {
		for i := range m.catalog {
			p := &m.catalog[i]
			if isSynonymOf(query, normalizeName(p.Name)) {
				return m.result(p, common.MatchTypeSynonym, scoreSynonym,
					fmt.Sprintf("%q is a synonym of %q", term, p.Name))
			}
		}
	}

	// 3. 子字串包含（任一方向）
	for i := range m.catalog {
		p := &m.catalog[i]
		name := normalizeName(p.Name)
		if strings.Contains(name, query) || strings.Contains(query, name) {
			return m.result(p, common.MatchTypePartial, scorePartial,
				fmt.Sprintf("%q partially matches %q", term, p.Name))
		}
	}

	return noMatch(fmt.Sprintf("no product matches %q", term))
}

// BestAlternative 最佳替代品：相似結果經安全驗證篩選後取最高分者，
// 並附上該替代品自身的風險警告
func (m *Matcher) BestAlternative(term string, profile *common.UserProfile, validator *safety.Validator) *common.FruitMatchResult {
	similar := m.FindSimilarFruits(term)

	for i := range similar {
		cand := similar[i]
		if cand.Product == nil {
			continue
		}

		n := m.nutrition[cand.Product.ID]
		rec := n.toRecord(normalizeName(cand.Product.Name))

		if profile != nil && validator != nil {
			res := validator.ValidateSafety(rec, profile)
			if !res.IsSafe {
				continue
			}
			cand.Warnings = res.Warnings
		}
		return &cand
	}
	return nil
}

// result 組裝配對結果
func (m *Matcher) result(p *common.Product, mt common.MatchType, score float64, reason string) common.FruitMatchResult {
	return common.FruitMatchResult{
		Product:            p,
		MatchType:          mt,
		SimilarityScore:    score,
		AvailabilityStatus: m.availability[p.ID],
		Reason:             reason,
	}
}

func noMatch(reason string) common.FruitMatchResult {
	return common.FruitMatchResult{
		MatchType:       common.MatchTypeNone,
		SimilarityScore: scoreNone,
		Reason:          reason,
	}
}

// normalizeName 名稱標準化：小寫、剝除處理方式描述詞、合併空白
func normalizeName(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if preparationDescriptors[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// availabilityFromBadge badge 導出的可用狀態
func availabilityFromBadge(badge string) string {
	b := strings.ToLower(badge)
	switch {
	case strings.Contains(b, "sold out") || strings.Contains(b, "售完"):
		return availabilityOutOfStock
	case strings.Contains(b, "pre-order") || strings.Contains(b, "preorder"):
		return availabilityPreorder
	case strings.Contains(b, "seasonal") || strings.Contains(b, "季節"):
		return availabilitySeasonal
	default:
		return availabilityInStock
	}
}
