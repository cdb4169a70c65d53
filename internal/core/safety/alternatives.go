package safety

import (
	"fmt"
	"math"
	"sort"

	"nutri-engine/internal/pkg/common"
)

const maxAlternatives = 3

// Alternative 安全替代品
type Alternative struct {
	Record       *common.NutritionRecord `json:"record"`
	Score        float64                 `json:"score"`
	Reason       string                  `json:"reason"`
	CalorieDelta float64                 `json:"calorie_delta"`
}

// SafeAlternatives 從候選清單篩出通過安全驗證者，
// 以熱量接近度、主要營養素相同與纖維接近度排序，最多回傳三筆
func (v *Validator) SafeAlternatives(record *common.NutritionRecord, profile *common.UserProfile, candidates []*common.NutritionRecord) []Alternative {
	if record == nil {
		return nil
	}

	var alts []Alternative
	for _, cand := range candidates {
		if cand == nil || cand.Name == record.Name {
			continue
		}
		if res := v.ValidateSafety(cand, profile); !res.IsSafe {
			continue
		}

		score := alternativeScore(record, cand)
		delta := cand.Calories - record.Calories
		alts = append(alts, Alternative{
			Record:       cand,
			Score:        score,
			Reason:       alternativeReason(record, cand, delta),
			CalorieDelta: delta,
		})
	}

	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].Score > alts[j].Score
	})

	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}

// alternativeScore 熱量接近度 0.4 + 主要營養素相同 0.2 + 纖維接近度 0.4
func alternativeScore(a, b *common.NutritionRecord) float64 {
	calScore := proximity(a.Calories, b.Calories, 500)
	fiberScore := proximity(a.Fiber, b.Fiber, 20)

	macroScore := 0.0
	if primaryMacro(a) == primaryMacro(b) {
		macroScore = 100.0
	}

	return 0.4*calScore + 0.2*macroScore + 0.4*fiberScore
}

// primaryMacro 每 100g 含量最高的巨量營養素
func primaryMacro(r *common.NutritionRecord) string {
	switch {
	case r.Protein >= r.Carbs && r.Protein >= r.Fat:
		return "protein"
	case r.Fat >= r.Carbs:
		return "fat"
	default:
		return "carbs"
	}
}

func proximity(v1, v2, rng float64) float64 {
	d := math.Abs(v1-v2) / rng * 100
	if d > 100 {
		d = 100
	}
	return 100 - d
}

func alternativeReason(orig, alt *common.NutritionRecord, delta float64) string {
	direction := "more"
	if delta < 0 {
		direction = "fewer"
	}
	sugarNote := ""
	if alt.Sugar < orig.Sugar {
		sugarNote = fmt.Sprintf(", %.1fg less sugar", orig.Sugar-alt.Sugar)
	}
	return fmt.Sprintf("%s has %.0f %s kcal per 100g than %s%s",
		alt.Name, math.Abs(delta), direction, orig.Name, sugarNote)
}
