package nutrition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nutri-engine/internal/core/nutrition/cache"
	"nutri-engine/internal/core/nutrition/provider"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"
)

const kiwiPayload = `{
	"name": "Kiwi",
	"family": "Actinidiaceae",
	"nutritions": {"calories": 61, "fat": 0.5, "sugar": 9.0, "carbohydrates": 14.7, "protein": 1.1}
}`

const ninjasKiwiPayload = `[
	{"name": "kiwi", "calories": 42, "serving_size_g": 69, "fat_total_g": 0.3,
	 "protein_g": 0.8, "potassium_mg": 215, "carbohydrates_total_g": 10.1,
	 "fiber_g": 2.1, "sugar_g": 6.2}
]`

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
			Timeout:    2 * time.Second,
			UseCache:   true,
		},
		Cache: config.CacheConfig{TTL: time.Minute},
	}
}

// fakeProvider 以 httptest 啟動假的供應商端點，回傳伺服器與呼叫計數器
func fakeProvider(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestService(cfg *config.Config, primaryURL, secondaryURL string) *Service {
	store := cache.NewStore(&cfg.Cache, nil)
	primary := provider.NewFruityvice(primaryURL, cfg.Fetch.Timeout)
	secondary := provider.NewNinjas(secondaryURL, "test-key", cfg.Fetch.Timeout)
	return NewService(cfg, store, primary, secondary)
}

func TestFetchFromPrimary(t *testing.T) {
	t.Parallel()
	primary, primaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(kiwiPayload))
	})
	secondary, secondaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("secondary should not be called when primary succeeds")
	})

	svc := newTestService(testConfig(), primary.URL, secondary.URL)
	rec, err := svc.FetchNutrition(context.Background(), "kiwi")
	if err != nil {
		t.Fatalf("FetchNutrition failed: %v", err)
	}

	if rec.Source != common.SourceFruityvice {
		t.Fatalf("source = %s, want %s", rec.Source, common.SourceFruityvice)
	}
	if rec.Calories != 61 || rec.Sugar != 9.0 || rec.Carbs != 14.7 {
		t.Fatalf("unexpected normalized values: %+v", rec)
	}
	if got := atomic.LoadInt64(primaryCalls); got != 1 {
		t.Fatalf("primary calls = %d, want 1", got)
	}
	if got := atomic.LoadInt64(secondaryCalls); got != 0 {
		t.Fatalf("secondary calls = %d, want 0", got)
	}
}

func TestFetchCacheHit(t *testing.T) {
	t.Parallel()
	primary, primaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(kiwiPayload))
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unexpected", http.StatusInternalServerError)
	})

	svc := newTestService(testConfig(), primary.URL, secondary.URL)
	ctx := context.Background()

	if _, err := svc.FetchNutrition(ctx, "kiwi"); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	rec, err := svc.FetchNutrition(ctx, "kiwi")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if rec.Source != common.SourceCache {
		t.Fatalf("second fetch source = %s, want %s", rec.Source, common.SourceCache)
	}
	if got := atomic.LoadInt64(primaryCalls); got != 1 {
		t.Fatalf("primary calls = %d, want 1 (second fetch must hit cache)", got)
	}
}

func TestPrimaryRetriesThenSecondary(t *testing.T) {
	t.Parallel()
	primary, primaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	secondary, secondaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ninjasKiwiPayload))
	})

	cfg := testConfig()
	svc := newTestService(cfg, primary.URL, secondary.URL)

	rec, err := svc.FetchNutrition(context.Background(), "kiwi")
	if err != nil {
		t.Fatalf("FetchNutrition failed: %v", err)
	}

	if rec.Source != common.SourceNinjas {
		t.Fatalf("source = %s, want %s", rec.Source, common.SourceNinjas)
	}
	// 主要來源用滿重試額度後才換次要來源
	if got := atomic.LoadInt64(primaryCalls); got != int64(cfg.Fetch.MaxRetries) {
		t.Fatalf("primary calls = %d, want %d", got, cfg.Fetch.MaxRetries)
	}
	if got := atomic.LoadInt64(secondaryCalls); got != 1 {
		t.Fatalf("secondary calls = %d, want 1", got)
	}
}

func TestNoResultsIsNotRetried(t *testing.T) {
	t.Parallel()
	primary, primaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ninjasKiwiPayload))
	})

	svc := newTestService(testConfig(), primary.URL, secondary.URL)
	rec, err := svc.FetchNutrition(context.Background(), "kiwi")
	if err != nil {
		t.Fatalf("FetchNutrition failed: %v", err)
	}

	if rec.Source != common.SourceNinjas {
		t.Fatalf("source = %s, want %s", rec.Source, common.SourceNinjas)
	}
	// 查無資料不是暫時性失敗，不得重試
	if got := atomic.LoadInt64(primaryCalls); got != 1 {
		t.Fatalf("primary calls = %d, want 1", got)
	}
}

func TestStaleFallbackWhenAllSourcesFail(t *testing.T) {
	t.Parallel()
	primary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	cfg := testConfig()
	store := cache.NewStore(&cfg.Cache, nil)
	svc := NewService(cfg, store,
		provider.NewFruityvice(primary.URL, cfg.Fetch.Timeout),
		provider.NewNinjas(secondary.URL, "test-key", cfg.Fetch.Timeout),
	)

	// 預先放入一筆即將過期的紀錄
	store.Set(context.Background(), "kiwi", &common.NutritionRecord{
		ID: common.GenerateUUID(), Name: "kiwi", Source: common.SourceFruityvice,
		FetchedAt: time.Now(), Calories: 61,
	}, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	rec, err := svc.FetchNutrition(context.Background(), "kiwi")
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if rec.Source != common.SourceFallback {
		t.Fatalf("source = %s, want %s (stale data must be flagged)", rec.Source, common.SourceFallback)
	}
	if rec.Name != "kiwi" || rec.Calories != 61 {
		t.Fatalf("stale record content mismatch: %+v", rec)
	}
}

func TestAllSourcesFailedWithoutCache(t *testing.T) {
	t.Parallel()
	primary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	svc := newTestService(testConfig(), primary.URL, secondary.URL)
	_, err := svc.FetchNutrition(context.Background(), "kiwi")
	if err == nil {
		t.Fatalf("expected terminal error when everything fails")
	}
	if !common.IsAllSourcesFailed(err) {
		t.Fatalf("expected AllSourcesFailedError, got %T: %v", err, err)
	}

	var ae *common.AllSourcesFailedError
	if !errors.As(err, &ae) {
		t.Fatalf("failed to unwrap AllSourcesFailedError")
	}
	if len(ae.Causes) != 2 {
		t.Fatalf("causes = %d, want 2 (one per source)", len(ae.Causes))
	}
	if ae.NotFoundOnly() {
		t.Fatalf("infrastructure failures must not be reported as not-found")
	}
}

func TestAllSourcesNotFound(t *testing.T) {
	t.Parallel()
	primary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	svc := newTestService(testConfig(), primary.URL, secondary.URL)
	_, err := svc.FetchNutrition(context.Background(), "unobtainium")
	if err == nil {
		t.Fatalf("expected error for unknown term")
	}

	var ae *common.AllSourcesFailedError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AllSourcesFailedError, got %T: %v", err, err)
	}
	if !ae.NotFoundOnly() {
		t.Fatalf("both sources reported no results, NotFoundOnly should be true")
	}
}

func TestEmptyTermRejected(t *testing.T) {
	t.Parallel()
	svc := newTestService(testConfig(), "http://127.0.0.1:0", "http://127.0.0.1:0")

	_, err := svc.FetchNutrition(context.Background(), "   ")
	if err == nil {
		t.Fatalf("expected validation error for blank term")
	}
	if !common.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()
	primary, primaryCalls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(kiwiPayload))
	})
	secondary, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unexpected", http.StatusInternalServerError)
	})

	cfg := testConfig()
	cfg.Fetch.UseCache = false
	svc := newTestService(cfg, primary.URL, secondary.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := svc.FetchNutrition(ctx, "kiwi")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if rec.Source != common.SourceFruityvice {
			t.Fatalf("fetch %d source = %s, want live provider", i, rec.Source)
		}
	}
	if got := atomic.LoadInt64(primaryCalls); got != 2 {
		t.Fatalf("primary calls = %d, want 2 when cache is disabled", got)
	}
}
