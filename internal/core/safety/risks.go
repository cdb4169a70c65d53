package safety

import (
	"fmt"
	"strings"

	"nutri-engine/internal/pkg/common"
)

// 風險分級邊界（value/threshold 百分比）
const (
	omitBelowPercent = 10.0
	moderateFloor    = 20.0
	highFloor        = 30.0
	avoidFloor       = 50.0
)

// 糖分門檻（g / 100g）
const (
	sugarThresholdBaseline  = 50.0
	sugarThresholdSensitive = 25.0
	sugarThresholdDiabetic  = 15.0
)

// 鉀門檻（mg / 100g）
const (
	potassiumThresholdBaseline = 900.0
	potassiumThresholdKidney   = 400.0
)

// 酸度門檻（估計 pH）；pH 越低越酸，2.0 為刻度下限
const (
	acidityThresholdBaseline = 4.0
	acidityThresholdReflux   = 4.6
	acidityPHFloor           = 2.0
)

// 名稱關鍵字推估 pH，僅是啟發式估計，不是權威數值
var fruitPHEstimates = map[string]float64{
	"lime":        2.2,
	"lemon":       2.4,
	"cranberry":   2.5,
	"grapefruit":  3.0,
	"pomegranate": 3.0,
	"kiwi":        3.4,
	"pineapple":   3.5,
	"strawberry":  3.5,
	"orange":      3.6,
	"apple":       3.8,
	"grape":       3.9,
	"peach":       4.0,
	"mango":       4.2,
	"cherry":      4.2,
	"pear":        4.3,
}

// 堅果關鍵字（nut_allergy）
var nutKeywords = []string{
	"almond", "cashew", "walnut", "pistachio", "pecan",
	"hazelnut", "macadamia", "peanut", "nut",
}

// 常見水果過敏原關鍵字（fruit_allergy，口腔過敏症候群相關）
var fruitAllergenKeywords = []string{
	"kiwi", "banana", "avocado", "melon", "strawberry", "peach", "mango",
}

// DetectRisks 對一筆紀錄評估糖分、鉀、酸度與過敏原風險
// profile 為 nil 時仍計算風險，但所有風險標記為不適用（無檔案即無限制）
func DetectRisks(record *common.NutritionRecord, profile *common.UserProfile) []common.DietaryRisk {
	if record == nil {
		return nil
	}

	var risks []common.DietaryRisk

	if r, ok := sugarRisk(record, profile); ok {
		risks = append(risks, r)
	}
	if r, ok := potassiumRisk(record, profile); ok {
		risks = append(risks, r)
	}
	if r, ok := acidityRisk(record, profile); ok {
		risks = append(risks, r)
	}
	risks = append(risks, allergenRisks(record, profile)...)

	return risks
}

// levelForPercentage 百分比分級；低於 10% 的風險整筆省略
// 對固定門檻而言數值越大等級必不下降
func levelForPercentage(pct float64) (common.RiskLevel, bool) {
	switch {
	case pct >= avoidFloor:
		return common.RiskLevelAvoid, true
	case pct >= highFloor:
		return common.RiskLevelHigh, true
	case pct >= moderateFloor:
		return common.RiskLevelModerate, true
	case pct >= omitBelowPercent:
		return common.RiskLevelLow, true
	default:
		return "", false
	}
}

// SugarThreshold 依檔案決定糖分門檻
func SugarThreshold(profile *common.UserProfile) float64 {
	switch {
	case profile.HasRestriction(common.RestrictionDiabetic) || profile.HasCondition(common.ConditionDiabetes):
		return sugarThresholdDiabetic
	case profile.HasRestriction(common.RestrictionSugarSensitive):
		return sugarThresholdSensitive
	default:
		return sugarThresholdBaseline
	}
}

// PotassiumThreshold 依檔案決定鉀門檻
func PotassiumThreshold(profile *common.UserProfile) float64 {
	if profile.HasRestriction(common.RestrictionKidney) ||
		profile.HasRestriction(common.RestrictionLowPotassium) ||
		profile.HasCondition(common.ConditionKidney) {
		return potassiumThresholdKidney
	}
	return potassiumThresholdBaseline
}

func sugarRisk(record *common.NutritionRecord, profile *common.UserProfile) (common.DietaryRisk, bool) {
	threshold := SugarThreshold(profile)
	pct := record.Sugar / threshold * 100

	level, ok := levelForPercentage(pct)
	if !ok {
		return common.DietaryRisk{}, false
	}

	return common.DietaryRisk{
		Type:             "sugar",
		Level:            level,
		Description:      fmt.Sprintf("%s contains %.1fg sugar per 100g (%.0f%% of your %gg limit)", record.Name, record.Sugar, pct, threshold),
		Cause:            "sugar content",
		Value:            record.Sugar,
		Threshold:        threshold,
		Unit:             "g",
		AppliesToProfile: profile != nil,
	}, true
}

func potassiumRisk(record *common.NutritionRecord, profile *common.UserProfile) (common.DietaryRisk, bool) {
	if record.Potassium == nil {
		return common.DietaryRisk{}, false
	}
	threshold := PotassiumThreshold(profile)
	value := *record.Potassium
	pct := value / threshold * 100

	level, ok := levelForPercentage(pct)
	if !ok {
		return common.DietaryRisk{}, false
	}

	return common.DietaryRisk{
		Type:             "potassium",
		Level:            level,
		Description:      fmt.Sprintf("%s contains %.0fmg potassium per 100g (%.0f%% of your %gmg limit)", record.Name, value, pct, threshold),
		Cause:            "potassium content",
		Value:            value,
		Threshold:        threshold,
		Unit:             "mg",
		AppliesToProfile: profile != nil,
	}, true
}

// acidityRisk 以名稱關鍵字推估 pH 的酸度風險
// 百分比 = (門檻 − 估計pH) / (門檻 − pH下限) × 100，估計越酸百分比越高
func acidityRisk(record *common.NutritionRecord, profile *common.UserProfile) (common.DietaryRisk, bool) {
	ph, found := estimatePH(record.Name)
	if !found {
		return common.DietaryRisk{}, false
	}

	threshold := acidityThresholdBaseline
	if profile.HasRestriction(common.RestrictionAcidReflux) || profile.HasCondition(common.ConditionAcidReflux) {
		threshold = acidityThresholdReflux
	}

	pct := (threshold - ph) / (threshold - acidityPHFloor) * 100
	if pct < 0 {
		pct = 0
	}

	level, ok := levelForPercentage(pct)
	if !ok {
		return common.DietaryRisk{}, false
	}

	return common.DietaryRisk{
		Type:             "acidity",
		Level:            level,
		Description:      fmt.Sprintf("%s is estimated at pH %.1f (keyword heuristic, not a measurement)", record.Name, ph),
		Cause:            "estimated acidity",
		Value:            ph,
		Threshold:        threshold,
		Unit:             "pH",
		AppliesToProfile: profile != nil,
	}, true
}

// allergenRisks 過敏原風險一律 AVOID，不經百分比分級
// 關鍵字比對只是啟發式，不保證涵蓋所有過敏原
func allergenRisks(record *common.NutritionRecord, profile *common.UserProfile) []common.DietaryRisk {
	name := strings.ToLower(record.Name)
	var risks []common.DietaryRisk

	if kw, hit := matchKeyword(name, nutKeywords); hit {
		risks = append(risks, common.DietaryRisk{
			Type:             "allergen",
			Level:            common.RiskLevelAvoid,
			Description:      fmt.Sprintf("%s matches nut allergen keyword %q", record.Name, kw),
			Cause:            "nut allergen keyword",
			Unit:             "keyword",
			AppliesToProfile: profile.HasRestriction(common.RestrictionNutAllergy),
		})
	}

	if kw, hit := matchKeyword(name, fruitAllergenKeywords); hit {
		risks = append(risks, common.DietaryRisk{
			Type:             "allergen",
			Level:            common.RiskLevelAvoid,
			Description:      fmt.Sprintf("%s matches fruit allergen keyword %q", record.Name, kw),
			Cause:            "fruit allergen keyword",
			Unit:             "keyword",
			AppliesToProfile: profile.HasRestriction(common.RestrictionFruitAllergy),
		})
	}

	// 使用者自訂敏感關鍵字：命中即適用於該檔案
	if profile != nil {
		for _, custom := range profile.CustomSensitivities {
			c := strings.ToLower(strings.TrimSpace(custom))
			if c != "" && strings.Contains(name, c) {
				risks = append(risks, common.DietaryRisk{
					Type:             "allergen",
					Level:            common.RiskLevelAvoid,
					Description:      fmt.Sprintf("%s matches your custom sensitivity %q", record.Name, custom),
					Cause:            "custom sensitivity keyword",
					Unit:             "keyword",
					AppliesToProfile: true,
				})
			}
		}
	}

	return risks
}

// estimatePH 由名稱關鍵字推估 pH；取最長的命中關鍵字
// （"pineapple" 須命中 pineapple 而非 apple）
func estimatePH(name string) (float64, bool) {
	lower := strings.ToLower(name)
	best := ""
	for kw := range fruitPHEstimates {
		if strings.Contains(lower, kw) && len(kw) > len(best) {
			best = kw
		}
	}
	if best == "" {
		return 0, false
	}
	return fruitPHEstimates[best], true
}

func matchKeyword(name string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return kw, true
		}
	}
	return "", false
}
