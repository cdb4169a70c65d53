package recommend

import (
	"context"
	"fmt"

	"nutri-engine/internal/core/match"
	"nutri-engine/internal/core/nutrition"
	"nutri-engine/internal/core/safety"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// Analysis 單筆紀錄的完整分析結果
type Analysis struct {
	Summary        string                       `json:"summary"`
	SafeRange      *common.SafeConsumptionRange `json:"safe_range"`
	Risks          []common.DietaryRisk         `json:"risks,omitempty"`
	Recommendation string                       `json:"recommendation"`
	IsSafe         bool                         `json:"is_safe"`
	Warnings       []string                     `json:"warnings,omitempty"`
}

// Options 分析選項
type Options struct {
	FilterUnsafe bool `json:"filter_unsafe"`
}

// Recommendation 端到端建議：擷取 → 分析 → 被封鎖時附上安全替代品
type Recommendation struct {
	Record      *common.NutritionRecord  `json:"record"`
	Analysis    *Analysis                `json:"analysis"`
	Match       *common.FruitMatchResult `json:"match,omitempty"`
	Alternative *common.FruitMatchResult `json:"alternative,omitempty"`
}

// Service 建議聚合器，組合資料擷取、風險引擎與配對器
type Service struct {
	cfg       *config.Config
	nutrition *nutrition.Service
	validator *safety.Validator
	matcher   *match.Matcher
}

// NewService 建立建議聚合器
func NewService(cfg *config.Config, nutritionSvc *nutrition.Service, validator *safety.Validator, matcher *match.Matcher) *Service {
	return &Service{
		cfg:       cfg,
		nutrition: nutritionSvc,
		validator: validator,
		matcher:   matcher,
	}
}

// Analyze 對一筆紀錄與檔案產出分析
func (s *Service) Analyze(ctx context.Context, record *common.NutritionRecord, profile *common.UserProfile, opts Options) (*Analysis, error) {
	if record == nil {
		return nil, common.NewValidationError(common.FieldError{
			Field:   "record",
			Message: "is required",
		})
	}

	risks := safety.DetectRisks(record, profile)
	result := s.validator.ValidateSafety(record, profile)
	safeRange := safety.CalculateSafeRange(record, profile)

	analysis := &Analysis{
		Summary:   summarize(record),
		SafeRange: safeRange,
		Risks:     risks,
		IsSafe:    result.IsSafe,
		Warnings:  result.Warnings,
	}

	if result.ShouldBlock {
		analysis.Recommendation = fmt.Sprintf("Not recommended: %s", result.BlockReason)
		if opts.FilterUnsafe {
			// 呼叫端要求過濾不安全項目時不回傳攝取範圍，避免被誤讀為許可
			analysis.SafeRange = nil
		}
	} else {
		analysis.Recommendation = fmt.Sprintf(
			"Up to %.0fg of %s per day fits your limits (%s); %.0fg is a comfortable portion",
			safeRange.MaxGrams, record.Name, safeRange.Reason, safeRange.RecommendedGrams,
		)
	}

	common.LogInfo("分析完成",
		zap.String("record", record.Name),
		zap.Int("risks", len(risks)),
		zap.Bool("is_safe", analysis.IsSafe),
	)

	return analysis, nil
}

// Recommend 端到端建議流程：擷取紀錄、分析、配對目錄商品，
// 被封鎖時改找通過安全驗證的最佳替代品
func (s *Service) Recommend(ctx context.Context, term string, profile *common.UserProfile) (*Recommendation, error) {
	record, err := s.nutrition.FetchNutrition(ctx, term)
	if err != nil {
		return nil, err
	}

	analysis, err := s.Analyze(ctx, record, profile, Options{FilterUnsafe: s.cfg.Safety.FilterUnsafe})
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{
		Record:   record,
		Analysis: analysis,
	}

	if s.matcher != nil {
		matched := s.matcher.MatchFruitToProduct(term)
		if matched.MatchType != common.MatchTypeNone {
			rec.Match = &matched
		}
		if !analysis.IsSafe {
			rec.Alternative = s.matcher.BestAlternative(term, profile, s.validator)
		}
	}

	return rec, nil
}

// summarize 產生一句式營養摘要
func summarize(record *common.NutritionRecord) string {
	return fmt.Sprintf("%s provides %.0f kcal, %.1fg sugar and %.1fg fiber per 100g",
		record.Name, record.Calories, record.Sugar, record.Fiber)
}
