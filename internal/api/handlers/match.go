package handlers

import (
	"net/http"

	"nutri-engine/internal/core/match"
	"nutri-engine/internal/core/safety"
	"nutri-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// MatchHandler 水果配對處理器
type MatchHandler struct {
	matcher   *match.Matcher
	validator *safety.Validator
}

// NewMatchHandler 建立配對處理器
func NewMatchHandler(matcher *match.Matcher, validator *safety.Validator) *MatchHandler {
	return &MatchHandler{matcher: matcher, validator: validator}
}

// MatchRequest 配對請求
type MatchRequest struct {
	Term    string              `json:"term" binding:"required"`
	Profile *common.UserProfile `json:"profile,omitempty"`
}

// Match 依優先序配對目錄商品
// POST /api/v1/match
func (h *MatchHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "term is required",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	result := h.matcher.MatchFruitToProduct(req.Term)
	c.JSON(http.StatusOK, result)
}

// Similar 營養相似度排名
// POST /api/v1/match/similar
func (h *MatchHandler) Similar(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "term is required",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	results := h.matcher.FindSimilarFruits(req.Term)
	c.JSON(http.StatusOK, gin.H{
		"term":    req.Term,
		"results": results,
	})
}

// Alternative 最佳安全替代品
// POST /api/v1/match/alternative
func (h *MatchHandler) Alternative(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "term is required",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	alt := h.matcher.BestAlternative(req.Term, req.Profile, h.validator)
	if alt == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no safe alternative found",
			"code":  "NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, alt)
}
