package requirement

import (
	"fmt"

	"nutri-engine/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

// 統一的五級活動量乘數表（三級舊表的 moderate/high 對應 1.55/1.9，已併入此表）
var activityMultipliers = map[common.ActivityLevel]float64{
	common.ActivitySedentary:  1.2,
	common.ActivityLight:      1.375,
	common.ActivityModerate:   1.55,
	common.ActivityActive:     1.725,
	common.ActivityVeryActive: 1.9,
}

// 目標對應的熱量調整（kcal/日）
var goalCalorieAdjustments = map[common.Goal]float64{
	common.GoalGeneral:    0,
	common.GoalWeightLoss: -500,
	common.GoalMuscleGain: 300,
	common.GoalEndurance:  200,
}

// macroSplit 三大營養素的熱量占比
type macroSplit struct {
	protein float64
	carbs   float64
	fat     float64
}

// 目標對應的巨量營養素占比
var goalMacroSplits = map[common.Goal]macroSplit{
	common.GoalGeneral:    {protein: 0.20, carbs: 0.50, fat: 0.30},
	common.GoalWeightLoss: {protein: 0.30, carbs: 0.40, fat: 0.30},
	common.GoalMuscleGain: {protein: 0.30, carbs: 0.45, fat: 0.25},
	common.GoalEndurance:  {protein: 0.20, carbs: 0.60, fat: 0.20},
}

// 微量營養素基準值
const (
	baseFiber        = 30.0   // g
	baseVitaminC     = 90.0   // mg
	basePotassium    = 3500.0 // mg
	baseMagnesium    = 400.0  // mg
	baseVitaminB6    = 1.7    // mg
	baseAntioxidants = 5000.0 // ORAC 單位近似
)

var validate = validator.New()

// CalculateDailyRequirements 由使用者檔案計算每日營養需求（純函式）
// BMR 採 Mifflin-St Jeor；缺少必要欄位回傳欄位層級的 ValidationError，不做靜默預設
func CalculateDailyRequirements(profile *common.UserProfile) (*common.DailyRequirements, error) {
	if profile == nil {
		return nil, common.NewValidationError(common.FieldError{
			Field:   "profile",
			Message: "is required",
		})
	}

	// 結構驗證（範圍、枚舉值）
	if err := validate.Struct(profile); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]common.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, common.FieldError{
					Field:   fe.Field(),
					Message: fmt.Sprintf("failed %q validation", fe.Tag()),
				})
			}
			return nil, common.NewValidationError(fields...)
		}
		return nil, err
	}

	// BMR 必要欄位檢查
	var missing []common.FieldError
	if profile.Age <= 0 {
		missing = append(missing, common.FieldError{Field: "age", Message: "is required for BMR"})
	}
	if profile.WeightKg <= 0 {
		missing = append(missing, common.FieldError{Field: "weight_kg", Message: "is required for BMR"})
	}
	if profile.HeightCm <= 0 {
		missing = append(missing, common.FieldError{Field: "height_cm", Message: "is required for BMR"})
	}
	if profile.Gender == "" {
		missing = append(missing, common.FieldError{Field: "gender", Message: "is required for BMR"})
	}
	if len(missing) > 0 {
		return nil, common.NewValidationError(missing...)
	}

	// Mifflin-St Jeor
	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age)
	if profile.Gender == common.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	// TDEE：活動量未填時採最保守的 sedentary
	multiplier, ok := activityMultipliers[profile.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[common.ActivitySedentary]
	}
	tdee := bmr * multiplier

	// 目標熱量調整與巨量營養素分配（4/4/9 kcal 每克）
	goal := profile.Goal
	if goal == "" {
		goal = common.GoalGeneral
	}
	calories := tdee + goalCalorieAdjustments[goal]
	split := goalMacroSplits[goal]

	req := &common.DailyRequirements{
		Calories:     calories,
		Protein:      calories * split.protein / 4,
		Carbs:        calories * split.carbs / 4,
		Fat:          calories * split.fat / 9,
		Fiber:        baseFiber,
		VitaminC:     baseVitaminC,
		Potassium:    basePotassium,
		Magnesium:    baseMagnesium,
		VitaminB6:    baseVitaminB6,
		Antioxidants: baseAntioxidants,
	}

	applyConditionAdjustments(req, profile)
	return req, nil
}

// applyConditionAdjustments 健康狀況的後調整，依列出順序累積套用
func applyConditionAdjustments(req *common.DailyRequirements, profile *common.UserProfile) {
	for _, c := range profile.HealthConditions {
		switch c {
		case common.ConditionDiabetes:
			req.Carbs *= 0.8
			req.Fiber *= 1.2
		case common.ConditionKidney:
			req.Protein *= 0.8
			req.Potassium *= 0.7
		case common.ConditionHypertension:
			req.Potassium *= 1.1
		case common.ConditionAcidReflux:
			// 不影響巨量營養素，酸度限制由風險引擎處理
		}
	}
}
