package common

import (
	"time"
)

// Source 營養資料的來源
type Source string

const (
	SourceFruityvice Source = "fruityvice" // 主要來源
	SourceNinjas     Source = "ninjas"     // 次要來源
	SourceCache      Source = "cache"      // 快取命中
	SourceFallback   Source = "fallback"   // 過期快取備援
)

// RiskLevel 風險等級
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelAvoid    RiskLevel = "AVOID"
)

// Rank 回傳風險等級的序數，數值越大代表越嚴重
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelLow:
		return 1
	case RiskLevelModerate:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelAvoid:
		return 4
	default:
		return 0
	}
}

// MatchType 配對層級
type MatchType string

const (
	MatchTypeExact   MatchType = "EXACT"
	MatchTypeSynonym MatchType = "SYNONYM"
	MatchTypePartial MatchType = "PARTIAL"
	MatchTypeSimilar MatchType = "SIMILAR"
	MatchTypeNone    MatchType = "NONE"
)

// ActivityLevel 活動量等級（統一為五級表）
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Goal 飲食目標
type Goal string

const (
	GoalGeneral    Goal = "general"
	GoalWeightLoss Goal = "weight_loss"
	GoalMuscleGain Goal = "muscle_gain"
	GoalEndurance  Goal = "endurance"
)

// Gender 性別（Mifflin-St Jeor 公式需要）
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// HealthCondition 健康狀況
type HealthCondition string

const (
	ConditionDiabetes     HealthCondition = "diabetes"
	ConditionKidney       HealthCondition = "kidney"
	ConditionHypertension HealthCondition = "hypertension"
	ConditionAcidReflux   HealthCondition = "acid_reflux"
)

// DietaryRestriction 飲食限制
type DietaryRestriction string

const (
	RestrictionDiabetic       DietaryRestriction = "diabetic"
	RestrictionSugarSensitive DietaryRestriction = "sugar_sensitive"
	RestrictionKidney         DietaryRestriction = "kidney"
	RestrictionLowPotassium   DietaryRestriction = "low_potassium"
	RestrictionAcidReflux     DietaryRestriction = "acid_reflux"
	RestrictionNutAllergy     DietaryRestriction = "nut_allergy"
	RestrictionFruitAllergy   DietaryRestriction = "fruit_allergy"
)

// RecordMetadata 原始供應商的份量資訊；數值欄位不做單位換算，僅保留原始份量
type RecordMetadata struct {
	OriginalServingSize float64 `json:"original_serving_size,omitempty"`
	OriginalServingUnit string  `json:"original_serving_unit,omitempty"`
	IsDried             bool    `json:"is_dried"`
	Category            string  `json:"category,omitempty"`
	Brand               string  `json:"brand,omitempty"`
}

// NutritionRecord 標準化後的每 100g 營養紀錄，建立後不可變更
type NutritionRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    Source    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`

	// 巨量營養素（每 100g，皆 ≥ 0）
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
	Fat      float64 `json:"fat"`
	Sugar    float64 `json:"sugar"`

	// 微量營養素（供應商未提供時為 nil）
	VitaminC  *float64 `json:"vitamin_c,omitempty"`
	VitaminB6 *float64 `json:"vitamin_b6,omitempty"`
	Potassium *float64 `json:"potassium,omitempty"`
	Magnesium *float64 `json:"magnesium,omitempty"`

	Metadata RecordMetadata `json:"metadata"`
}

// HealthSensitivity 單項健康敏感設定
type HealthSensitivity struct {
	Restriction DietaryRestriction `json:"restriction"`
	Severity    string             `json:"severity,omitempty"`
}

// UserProfile 統一的使用者健康檔案（需求計算與風險引擎共用同一型別）
// 本引擎僅讀取，不負責持久化
type UserProfile struct {
	Age                 int                 `json:"age,omitempty" validate:"omitempty,gt=0,lt=130"`
	Gender              Gender              `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	WeightKg            float64             `json:"weight_kg,omitempty" validate:"omitempty,gt=0,lt=500"`
	HeightCm            float64             `json:"height_cm,omitempty" validate:"omitempty,gt=0,lt=300"`
	ActivityLevel       ActivityLevel       `json:"activity_level,omitempty" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	Goal                Goal                `json:"goal,omitempty" validate:"omitempty,oneof=general weight_loss muscle_gain endurance"`
	HealthConditions    []HealthCondition   `json:"health_conditions,omitempty" validate:"omitempty,dive,oneof=diabetes kidney hypertension acid_reflux"`
	HealthSensitivities []HealthSensitivity `json:"health_sensitivities,omitempty"`
	CustomSensitivities []string            `json:"custom_sensitivities,omitempty"`
}

// HasRestriction 檢查是否有指定的飲食限制
func (p *UserProfile) HasRestriction(r DietaryRestriction) bool {
	if p == nil {
		return false
	}
	for _, s := range p.HealthSensitivities {
		if s.Restriction == r {
			return true
		}
	}
	return false
}

// HasCondition 檢查是否有指定的健康狀況
func (p *UserProfile) HasCondition(c HealthCondition) bool {
	if p == nil {
		return false
	}
	for _, hc := range p.HealthConditions {
		if hc == c {
			return true
		}
	}
	return false
}

// DietaryRisk 單項飲食風險，每次分析重新計算，不做快取（依賴使用者檔案）
type DietaryRisk struct {
	Type             string    `json:"type"`
	Level            RiskLevel `json:"level"`
	Description      string    `json:"description"`
	Cause            string    `json:"cause"`
	Value            float64   `json:"value"`
	Threshold        float64   `json:"threshold"`
	Unit             string    `json:"unit"`
	AppliesToProfile bool      `json:"applies_to_profile"`
}

// SafeConsumptionRange 每日安全攝取範圍（公克）
// 不變量：MinGrams ≤ RecommendedGrams ≤ MaxGrams，MaxGrams ∈ [30, 200]
type SafeConsumptionRange struct {
	MinGrams         float64 `json:"min_grams"`
	MaxGrams         float64 `json:"max_grams"`
	RecommendedGrams float64 `json:"recommended_grams"`
	Reason           string  `json:"reason"`
	IsConservative   bool    `json:"is_conservative"`
}

// Product 商品目錄項目，由外部維護，配對器視為唯讀快照
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Badge         string  `json:"badge,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
}

// FruitMatchResult 水果配對結果
type FruitMatchResult struct {
	Product            *Product  `json:"product,omitempty"`
	MatchType          MatchType `json:"match_type"`
	SimilarityScore    float64   `json:"similarity_score"`
	AvailabilityStatus string    `json:"availability_status,omitempty"`
	Reason             string    `json:"reason,omitempty"`
	Warnings           []string  `json:"warnings,omitempty"`
}

// IsExactMatch 僅在 EXACT 層級時為真
func (r FruitMatchResult) IsExactMatch() bool {
	return r.MatchType == MatchTypeExact
}

// DailyRequirements 每日營養需求
type DailyRequirements struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fiber        float64 `json:"fiber"`
	Fat          float64 `json:"fat"`
	VitaminC     float64 `json:"vitamin_c"`
	Potassium    float64 `json:"potassium"`
	Magnesium    float64 `json:"magnesium"`
	VitaminB6    float64 `json:"vitamin_b6"`
	Antioxidants float64 `json:"antioxidants"`
}
