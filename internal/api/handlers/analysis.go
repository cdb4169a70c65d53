package handlers

import (
	"net/http"

	"nutri-engine/internal/core/recommend"
	"nutri-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler 分析與建議處理器
type AnalysisHandler struct {
	service *recommend.Service
}

// NewAnalysisHandler 建立分析處理器
func NewAnalysisHandler(service *recommend.Service) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// AnalyzeRequest 分析請求：record 與 term 擇一，record 優先
type AnalyzeRequest struct {
	Record  *common.NutritionRecord `json:"record,omitempty"`
	Term    string                  `json:"term,omitempty"`
	Profile *common.UserProfile     `json:"profile,omitempty"`
	Options *recommend.Options      `json:"options,omitempty"`
}

// Analyze 對一筆紀錄（或查詢詞）與檔案產出分析
// POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	// 以查詢詞分析時走端到端建議流程
	if req.Record == nil {
		rec, err := h.service.Recommend(c.Request.Context(), req.Term, req.Profile)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
		return
	}

	opts := recommend.Options{FilterUnsafe: true}
	if req.Options != nil {
		opts = *req.Options
	}

	analysis, err := h.service.Analyze(c.Request.Context(), req.Record, req.Profile, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
