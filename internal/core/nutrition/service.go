package nutrition

import (
	"context"
	"time"

	"nutri-engine/internal/core/nutrition/cache"
	"nutri-engine/internal/core/nutrition/provider"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service 資料擷取服務
// 流程：快取 → 主要來源（重試）→ 次要來源（重試）→ 過期快取備援 → 全來源失敗
// 同一標準化詞彙的併發請求以 singleflight 合併，共用一次網路往返
type Service struct {
	cfg       *config.Config
	store     *cache.Store
	primary   provider.Client
	secondary provider.Client
	group     singleflight.Group
}

// NewService 建立資料擷取服務
func NewService(cfg *config.Config, store *cache.Store, primary, secondary provider.Client) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		primary:   primary,
		secondary: secondary,
	}
}

// FetchNutrition 取得一筆標準化營養紀錄
func (s *Service) FetchNutrition(ctx context.Context, term string) (*common.NutritionRecord, error) {
	key := cache.NormalizeKey(term)
	if key == "" {
		return nil, common.NewValidationError(common.FieldError{
			Field:   "term",
			Message: "must not be empty",
		})
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.fetch(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		common.LogDebug("共用進行中的擷取結果", zap.String("term", key))
	}
	return v.(*common.NutritionRecord), nil
}

// fetch 單次擷取流程，持有該詞彙的 singleflight 席位
func (s *Service) fetch(ctx context.Context, key string) (*common.NutritionRecord, error) {
	// 1. 快取命中直接回傳
	if s.cacheEnabled() {
		if rec, ok := s.store.Get(key); ok {
			common.LogCacheHit("memory", key)
			cached := *rec
			cached.Source = common.SourceCache
			return &cached, nil
		}
		common.LogCacheMiss("memory", key)
	}

	// 2–3. 依序嘗試主要、次要來源；每個來源有自己的重試額度
	var causes []error
	for _, p := range []provider.Client{s.primary, s.secondary} {
		rec, err := s.fetchWithRetry(ctx, p, key)
		if err == nil {
			if s.cacheEnabled() {
				s.store.Set(ctx, key, rec, 0)
			}
			return rec, nil
		}
		causes = append(causes, err)
		common.LogWarn("來源失敗，換下一個來源",
			zap.String("provider", p.Name()),
			zap.String("term", key),
			zap.Error(err),
		)
	}

	// 4. 過期快取備援：這是唯一允許讀取過期條目的地方
	if s.cacheEnabled() {
		if rec, ok := s.store.GetStale(key); ok {
			common.LogWarn("全來源失敗，回傳過期快取",
				zap.String("term", key),
				zap.Time("fetched_at", rec.FetchedAt),
			)
			stale := *rec
			stale.Source = common.SourceFallback
			return &stale, nil
		}
	}

	// 5. 終端失敗
	return nil, &common.AllSourcesFailedError{Term: key, Causes: causes}
}

// fetchWithRetry 單一來源的有界重試迴圈：指數退避 delay·2^(attempt−1)，
// 每次嘗試受逾時限制；逾時計為一次失敗嘗試，不是獨立錯誤類別
func (s *Service) fetchWithRetry(ctx context.Context, p provider.Client, term string) (*common.NutritionRecord, error) {
	maxRetries := s.cfg.Fetch.MaxRetries
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Fetch.Timeout)
		start := time.Now()
		rec, err := p.Lookup(attemptCtx, term)
		cancel()

		common.LogProviderCall(p.Name(), term, time.Since(start), err)

		if err == nil {
			return rec, nil
		}

		// 查無資料不重試，直接換來源
		if common.IsNoResults(err) {
			return nil, err
		}

		lastErr = common.NewProviderError(p.Name(), attempt, err)

		if attempt < maxRetries {
			delay := s.cfg.Fetch.RetryDelay * (1 << (attempt - 1))
			common.LogDebug("重試前退避",
				zap.String("provider", p.Name()),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, common.NewProviderError(p.Name(), attempt, ctx.Err())
			}
		}
	}

	return nil, lastErr
}

// InvalidateExpired 清除過期快取，回傳清除數量
func (s *Service) InvalidateExpired() int {
	if s.store == nil {
		return 0
	}
	return s.store.InvalidateExpired()
}

// CacheStats 快取統計
func (s *Service) CacheStats() map[string]interface{} {
	if s.store == nil {
		return nil
	}
	return s.store.Stats()
}

func (s *Service) cacheEnabled() bool {
	return s.cfg.Fetch.UseCache && s.store != nil
}
