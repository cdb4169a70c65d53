package match

import (
	"fmt"
	"math"
	"sort"

	"nutri-engine/internal/pkg/common"
)

// 相似度計算的固定值域
const (
	rangeCalories  = 500.0
	rangeCarbs     = 100.0
	rangeFiber     = 20.0
	rangeVitaminC  = 500.0
	rangePotassium = 2000.0
	rangeMagnesium = 500.0
	rangeVitaminB6 = 2.0
)

// FindSimilarFruits 對目錄中每項商品計算營養相似度（matchType=SIMILAR）
// 查詢詞的營養輪廓解析不到時回傳空結果；低於門檻者排除，餘者依分數遞減排序
func (m *Matcher) FindSimilarFruits(term string) []common.FruitMatchResult {
	query, resolved := lookupNutrition(term)
	if !resolved {
		return nil
	}

	queryName := normalizeName(term)
	var results []common.FruitMatchResult

	for i := range m.catalog {
		p := &m.catalog[i]
		if normalizeName(p.Name) == queryName {
			continue
		}

		score := nutritionalSimilarity(query, m.nutrition[p.ID])
		if score < m.minSimilarity {
			continue
		}

		results = append(results, common.FruitMatchResult{
			Product:            p,
			MatchType:          common.MatchTypeSimilar,
			SimilarityScore:    score,
			AvailabilityStatus: m.availability[p.ID],
			Reason:             fmt.Sprintf("%s is nutritionally %.0f%% similar to %s", p.Name, score, term),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	return results
}

// nutritionalSimilarity 加權相似度：
// 0.25·熱量 + 0.25·碳水 + 0.25·纖維 + 0.25·維生素（四項子分數的平均）
// 對稱：nutritionalSimilarity(a, b) == nutritionalSimilarity(b, a)
func nutritionalSimilarity(a, b fruitNutrition) float64 {
	caloriesScore := subScore(a.Calories, b.Calories, rangeCalories)
	carbsScore := subScore(a.Carbs, b.Carbs, rangeCarbs)
	fiberScore := subScore(a.Fiber, b.Fiber, rangeFiber)

	vitaminsScore := (subScore(a.VitaminC, b.VitaminC, rangeVitaminC) +
		subScore(a.Potassium, b.Potassium, rangePotassium) +
		subScore(a.Magnesium, b.Magnesium, rangeMagnesium) +
		subScore(a.VitaminB6, b.VitaminB6, rangeVitaminB6)) / 4

	return 0.25*caloriesScore + 0.25*carbsScore + 0.25*fiberScore + 0.25*vitaminsScore
}

// subScore = max(0, 100 − |v1−v2|/range × 100)
func subScore(v1, v2, rng float64) float64 {
	return math.Max(0, 100-math.Abs(v1-v2)/rng*100)
}
