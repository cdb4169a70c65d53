package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutri-engine/internal/api"
	"nutri-engine/internal/core/nutrition"
	"nutri-engine/internal/core/nutrition/cache"
	"nutri-engine/internal/core/nutrition/provider"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("primary_provider", cfg.Provider.PrimaryBaseURL),
		zap.String("secondary_provider", cfg.Provider.SecondaryBaseURL),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	// 初始化持久化後端（可選）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// 持久化失敗降級為純記憶體快取，不中斷啟動
			common.LogWarn("Redis 連線失敗，僅使用記憶體快取", zap.Error(err))
			rdb = nil
		}
		cancel()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 初始化快取與營養資料服務
	store := cache.NewStore(&cfg.Cache, rdb)
	if rdb != nil {
		loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		loaded, err := store.LoadPersisted(loadCtx)
		cancel()
		if err != nil {
			common.LogWarn("載入持久化快取失敗", zap.Error(err))
		} else if loaded > 0 {
			common.LogInfo("已載入持久化快取", zap.Int("entries", loaded))
		}
	}

	primary := provider.NewFruityvice(cfg.Provider.PrimaryBaseURL, cfg.Fetch.Timeout)
	secondary := provider.NewNinjas(cfg.Provider.SecondaryBaseURL, cfg.Provider.SecondaryAPIKey, cfg.Fetch.Timeout)
	nutritionSvc := nutrition.NewService(cfg, store, primary, secondary)

	// 設置路由
	router, err := api.SetupRouter(cfg, nutritionSvc)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
