package handlers

import (
	"errors"
	"net/http"

	"nutri-engine/internal/core/nutrition"
	"nutri-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NutritionHandler 營養查詢處理器
type NutritionHandler struct {
	service *nutrition.Service
}

// NewNutritionHandler 建立營養查詢處理器
func NewNutritionHandler(service *nutrition.Service) *NutritionHandler {
	return &NutritionHandler{service: service}
}

// Fetch 取得一筆標準化營養紀錄
// GET /api/v1/nutrition/:term
func (h *NutritionHandler) Fetch(c *gin.Context) {
	term := c.Param("term")

	record, err := h.service.FetchNutrition(c.Request.Context(), term)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// writeError 錯誤分類映射：查無 → 404、驗證 → 400、全來源失敗 → 502
// 呼叫端需能區分「查無資料」與「基礎設施故障」
func writeError(c *gin.Context, err error) {
	var ve *common.ValidationError
	var ae *common.AllSourcesFailedError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid request",
			"code":   "INVALID_REQUEST",
			"fields": ve.Fields,
		})

	// 全來源失敗須先於 IsNoResults 判斷：errors.As 會穿透 Causes，
	// 混合失敗（基礎設施故障＋查無）不得被其中的查無原因降級成 404
	case errors.As(err, &ae):
		if ae.NotFoundOnly() {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
				"code":  "NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"code":  "ALL_SOURCES_FAILED",
		})

	case common.IsNoResults(err):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
			"code":  "NOT_FOUND",
		})

	default:
		common.LogError("未分類的處理錯誤", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
			"code":  "INTERNAL_ERROR",
		})
	}
}
