package safety

import (
	"math"

	"nutri-engine/internal/core/requirement"
	"nutri-engine/internal/pkg/common"
)

const (
	maxGramsFloor   = 30.0
	maxGramsCeiling = 200.0
	minGrams        = 10.0 // 固定的最小有意義份量
	recommendedCap  = 50.0

	// 檔案不完整時的熱量基準
	fallbackDailyCalories = 2000.0

	// 單一食物占每日熱量的上限比例
	calorieShare = 0.10
)

// CalculateSafeRange 計算每日安全攝取範圍：
// 熱量上限、糖分上限、鉀上限三者取最小，夾至 [30, 200]，
// 建議量 = min(50, ⌊最大量 × 0.5⌋)
func CalculateSafeRange(record *common.NutritionRecord, profile *common.UserProfile) *common.SafeConsumptionRange {
	daily := dailyCalories(profile)

	maxG := maxGramsCeiling
	reason := "general portion guidance"
	conservative := false

	// 熱量上限：每日熱量的 10% ÷ 每 100g 熱量 × 100
	if record.Calories > 0 {
		calCap := calorieShare * daily / record.Calories * 100
		if calCap < maxG {
			maxG = calCap
			reason = "calorie limit"
		}
	}

	// 糖分上限
	if record.Sugar > 0 {
		threshold := SugarThreshold(profile)
		sugarCap := threshold / record.Sugar * 100
		if sugarCap < maxG {
			maxG = sugarCap
			reason = "sugar limit"
			conservative = threshold < sugarThresholdBaseline
		}
	}

	// 鉀上限
	if record.Potassium != nil && *record.Potassium > 0 {
		threshold := PotassiumThreshold(profile)
		potCap := threshold / *record.Potassium * 100
		if potCap < maxG {
			maxG = potCap
			reason = "potassium limit"
			conservative = threshold < potassiumThresholdBaseline
		}
	}

	// 夾至 [30, 200]
	if maxG < maxGramsFloor {
		maxG = maxGramsFloor
	}
	if maxG > maxGramsCeiling {
		maxG = maxGramsCeiling
	}

	recommended := math.Min(recommendedCap, math.Floor(maxG*0.5))

	return &common.SafeConsumptionRange{
		MinGrams:         minGrams,
		MaxGrams:         maxG,
		RecommendedGrams: recommended,
		Reason:           reason,
		IsConservative:   conservative,
	}
}

// dailyCalories 取每日熱量需求；檔案缺漏時退回固定基準，不讓範圍計算失敗
func dailyCalories(profile *common.UserProfile) float64 {
	if profile == nil {
		return fallbackDailyCalories
	}
	req, err := requirement.CalculateDailyRequirements(profile)
	if err != nil {
		return fallbackDailyCalories
	}
	return req.Calories
}
