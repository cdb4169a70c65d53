package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutri-engine/internal/pkg/common"
)

// BodySizeLimit 拒絕超過 maxBytes 的請求體；所有分析與配對請求體都很小，
// 超限一律視為用戶端錯誤，回應沿用 handlers 的 {error, code} 格式
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			common.LogWarn("請求體超過上限",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_bytes", maxBytes),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "request body too large",
				"code":      "REQUEST_TOO_LARGE",
				"max_bytes": maxBytes,
			})
			return
		}

		// Content-Length 可能缺失或造假，仍以 MaxBytesReader 硬性截斷
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}
