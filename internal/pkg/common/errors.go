package common

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderError 單次供應商請求失敗（網路錯誤、逾時、非 2xx），屬可重試類別
// 逾時不是獨立的錯誤類別，一律視為 ProviderError
type ProviderError struct {
	Provider string
	Attempt  int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s attempt %d failed: %v", e.Provider, e.Attempt, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError 建立供應商錯誤
func NewProviderError(provider string, attempt int, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Attempt:  attempt,
		Err:      err,
	}
}

// IsProviderError 檢查是否為供應商錯誤
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// NoResultsError 供應商正常回應但查無資料；不重試，直接觸發下一個來源
type NoResultsError struct {
	Provider string
	Term     string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("provider %s found no results for %q", e.Provider, e.Term)
}

// NewNoResultsError 建立查無資料錯誤
func NewNoResultsError(provider, term string) *NoResultsError {
	return &NoResultsError{Provider: provider, Term: term}
}

// IsNoResults 檢查是否為查無資料錯誤
func IsNoResults(err error) bool {
	var ne *NoResultsError
	return errors.As(err, &ne)
}

// AllSourcesFailedError 所有來源（含過期快取備援）皆失敗的終端錯誤
// Causes 保留各來源的失敗原因，讓呼叫端能區分「查無」與「基礎設施故障」
type AllSourcesFailedError struct {
	Term   string
	Causes []error
}

func (e *AllSourcesFailedError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("all nutrition sources failed for %q: %s", e.Term, strings.Join(msgs, "; "))
}

func (e *AllSourcesFailedError) Unwrap() []error {
	return e.Causes
}

// NotFoundOnly 所有來源都回報查無資料（而非基礎設施故障）時為真
func (e *AllSourcesFailedError) NotFoundOnly() bool {
	if len(e.Causes) == 0 {
		return false
	}
	for _, c := range e.Causes {
		if !IsNoResults(c) {
			return false
		}
	}
	return true
}

// IsAllSourcesFailed 檢查是否為全來源失敗錯誤
func IsAllSourcesFailed(err error) bool {
	var ae *AllSourcesFailedError
	return errors.As(err, &ae)
}

// FieldError 單一欄位的驗證錯誤
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 輸入驗證錯誤，附欄位層級的錯誤清單，不做靜默預設
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError 建立驗證錯誤
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
