package api

import (
	"fmt"
	"time"

	"nutri-engine/internal/api/handlers"
	"nutri-engine/internal/api/handlers/health"
	"nutri-engine/internal/api/middleware"
	"nutri-engine/internal/core/match"
	"nutri-engine/internal/core/nutrition"
	"nutri-engine/internal/core/recommend"
	"nutri-engine/internal/core/safety"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 請求體大小限制 (1MB)，本引擎只收 JSON
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, nutritionSvc *nutrition.Service) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 載入商品目錄並初始化服務
	catalog, err := match.LoadCatalog(cfg.Match.CatalogPath)
	if err != nil {
		common.LogError("Failed to load product catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	validator := safety.NewValidator()
	matcher := match.NewMatcher(&cfg.Match, catalog)
	recommendSvc := recommend.NewService(cfg, nutritionSvc, validator, matcher)

	common.LogInfo("Services initialized",
		zap.Int("catalog_size", len(catalog)),
		zap.Bool("cache_enabled", cfg.Fetch.UseCache),
		zap.Float64("similarity_threshold", cfg.Match.MinSimilarityThreshold),
	)

	// 初始化處理器
	nutritionHandler := handlers.NewNutritionHandler(nutritionSvc)
	analysisHandler := handlers.NewAnalysisHandler(recommendSvc)
	matchHandler := handlers.NewMatchHandler(matcher, validator)

	// 健康檢查
	router.GET("/health", health.HealthCheck(cfg, nutritionSvc))
	router.GET("/live", health.LivenessCheck)

	// API 路由
	v1 := router.Group("/api/v1")
	{
		v1.GET("/nutrition/:term", nutritionHandler.Fetch)
		v1.POST("/analyze", analysisHandler.Analyze)
		v1.POST("/match", matchHandler.Match)
		v1.POST("/match/similar", matchHandler.Similar)
		v1.POST("/match/alternative", matchHandler.Alternative)
	}

	return router, nil
}
