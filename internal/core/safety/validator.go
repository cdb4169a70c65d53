package safety

import (
	"fmt"

	"nutri-engine/internal/pkg/common"
)

// Result 安全評估結果；不安全不是錯誤，而是正常的型別化輸出
// 不變量：IsSafe == !ShouldBlock；ShouldBlock 為真時 BlockReason 非空且至少一則警告
type Result struct {
	IsSafe      bool     `json:"is_safe"`
	Warnings    []string `json:"warnings,omitempty"`
	ShouldBlock bool     `json:"should_block"`
	BlockReason string   `json:"block_reason,omitempty"`
}

// Validator 安全驗證器；純函式集合，無內部狀態
type Validator struct{}

// NewValidator 建立安全驗證器
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSafety 評估一筆紀錄對指定檔案是否安全
// 封鎖條件：任一適用於檔案的 AVOID 或 HIGH 風險，或過敏原／自訂關鍵字命中
// 沒有檔案時一律不封鎖（無資料即無限制）
func (v *Validator) ValidateSafety(record *common.NutritionRecord, profile *common.UserProfile) *Result {
	result := &Result{IsSafe: true}

	if record == nil {
		return result
	}

	risks := DetectRisks(record, profile)

	// 警告收集所有適用風險；profile 為 nil 時沒有風險適用
	for _, r := range risks {
		if !r.AppliesToProfile {
			continue
		}
		result.Warnings = append(result.Warnings, r.Description)

		if r.Level == common.RiskLevelAvoid || r.Level == common.RiskLevelHigh {
			result.ShouldBlock = true
			if result.BlockReason == "" {
				result.BlockReason = fmt.Sprintf("%s risk is %s: %s", r.Type, r.Level, r.Description)
			}
		}
	}

	if result.ShouldBlock && len(result.Warnings) == 0 {
		// 不應發生；封鎖結果必須帶至少一則警告
		result.Warnings = append(result.Warnings, result.BlockReason)
	}

	result.IsSafe = !result.ShouldBlock
	return result
}
