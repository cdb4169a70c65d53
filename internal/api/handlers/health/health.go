package health

import (
	"net/http"
	"runtime"
	"time"

	"nutri-engine/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// StatsProvider 快取統計來源
type StatsProvider interface {
	CacheStats() map[string]interface{}
}

// HealthCheck 健康檢查處理器
func HealthCheck(cfg *config.Config, stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 獲取運行時信息
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   cfg.App.Version,
			Runtime: map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]interface{}{
					"alloc":  m.Alloc,
					"sys":    m.Sys,
					"num_gc": m.NumGC,
				},
			},
		}

		if stats != nil {
			response.Cache = stats.CacheStats()
		}

		c.JSON(http.StatusOK, response)
	}
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
