package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutri-engine/internal/core/match"
	"nutri-engine/internal/core/nutrition"
	"nutri-engine/internal/core/nutrition/cache"
	"nutri-engine/internal/core/nutrition/provider"
	"nutri-engine/internal/core/recommend"
	"nutri-engine/internal/core/safety"
	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
			Timeout:    2 * time.Second,
			UseCache:   true,
		},
		Cache: config.CacheConfig{TTL: time.Minute},
		Match: config.MatchConfig{
			MinSimilarityThreshold: 50,
			IncludeSynonyms:        true,
		},
		Safety: config.SafetyConfig{FilterUnsafe: true},
	}
}

// testRouter 以假的供應商端點組一個最小路由
func testRouter(t *testing.T, fruityviceHandler http.HandlerFunc) *gin.Engine {
	t.Helper()

	primary := httptest.NewServer(fruityviceHandler)
	t.Cleanup(primary.Close)
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(secondary.Close)

	cfg := testConfig()
	store := cache.NewStore(&cfg.Cache, nil)
	nutritionSvc := nutrition.NewService(cfg, store,
		provider.NewFruityvice(primary.URL, cfg.Fetch.Timeout),
		provider.NewNinjas(secondary.URL, "test-key", cfg.Fetch.Timeout),
	)
	validator := safety.NewValidator()
	matcher := match.NewMatcher(&cfg.Match, match.DefaultCatalog)
	recommendSvc := recommend.NewService(cfg, nutritionSvc, validator, matcher)

	router := gin.New()
	nutritionHandler := NewNutritionHandler(nutritionSvc)
	analysisHandler := NewAnalysisHandler(recommendSvc)
	matchHandler := NewMatchHandler(matcher, validator)

	v1 := router.Group("/api/v1")
	v1.GET("/nutrition/:term", nutritionHandler.Fetch)
	v1.POST("/analyze", analysisHandler.Analyze)
	v1.POST("/match", matchHandler.Match)
	v1.POST("/match/similar", matchHandler.Similar)
	v1.POST("/match/alternative", matchHandler.Alternative)
	return router
}

func kiwiFruityvice(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{
		"name": "Kiwi",
		"family": "Actinidiaceae",
		"nutritions": {"calories": 61, "fat": 0.5, "sugar": 9.0, "carbohydrates": 14.7, "protein": 1.1}
	}`))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFetchNutritionEndpoint(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nutrition/kiwi", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var rec common.NutritionRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Name != "kiwi" || rec.Calories != 61 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFetchNutritionNotFound(t *testing.T) {
	t.Parallel()
	router := testRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	w := doJSON(t, router, http.MethodGet, "/api/v1/nutrition/unobtainium", nil)
	// 兩個來源都查無 → 404，而非 502
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body: %s", w.Code, w.Body.String())
	}
}

func TestFetchNutritionUpstreamFailure(t *testing.T) {
	t.Parallel()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(primary.Close)
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(secondary.Close)

	cfg := testConfig()
	store := cache.NewStore(&cfg.Cache, nil)
	nutritionSvc := nutrition.NewService(cfg, store,
		provider.NewFruityvice(primary.URL, cfg.Fetch.Timeout),
		provider.NewNinjas(secondary.URL, "test-key", cfg.Fetch.Timeout),
	)

	router := gin.New()
	router.GET("/api/v1/nutrition/:term", NewNutritionHandler(nutritionSvc).Fetch)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nutrition/kiwi", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body: %s", w.Code, w.Body.String())
	}
}

func TestFetchNutritionMixedFailureIsNotNotFound(t *testing.T) {
	t.Parallel()

	// 主要來源基礎設施故障、次要來源查無：整體是基礎設施故障，不是 404
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(primary.Close)
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(secondary.Close)

	cfg := testConfig()
	store := cache.NewStore(&cfg.Cache, nil)
	nutritionSvc := nutrition.NewService(cfg, store,
		provider.NewFruityvice(primary.URL, cfg.Fetch.Timeout),
		provider.NewNinjas(secondary.URL, "test-key", cfg.Fetch.Timeout),
	)

	router := gin.New()
	router.GET("/api/v1/nutrition/:term", NewNutritionHandler(nutritionSvc).Fetch)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nutrition/kiwi", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "ALL_SOURCES_FAILED" {
		t.Fatalf("code = %q, want ALL_SOURCES_FAILED", resp.Code)
	}
}

func TestMatchEndpoint(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/match", gin.H{"term": "kiwifruit"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var result common.FruitMatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.MatchType != common.MatchTypeSynonym || result.SimilarityScore != 95 {
		t.Fatalf("unexpected match: %+v", result)
	}
}

func TestMatchEndpointRequiresTerm(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/match", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAlternativeEndpointNotFound(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	// 糖尿病檔案封鎖整個果乾目錄，替代品查無
	w := doJSON(t, router, http.MethodPost, "/api/v1/match/alternative", gin.H{
		"term":    "kiwi",
		"profile": gin.H{"health_conditions": []string{"diabetes"}},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeEndpointWithRecord(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	body := gin.H{
		"record": gin.H{
			"id": "r-1", "name": "dates", "source": "fruityvice",
			"calories": 277, "sugar": 66.5, "carbs": 75, "fiber": 6.7,
		},
		"profile": gin.H{"health_conditions": []string{"diabetes"}},
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var analysis recommend.Analysis
	if err := json.Unmarshal(w.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if analysis.IsSafe {
		t.Fatalf("dates must be blocked for a diabetic profile")
	}
	if analysis.SafeRange != nil {
		t.Fatalf("blocked analysis must omit the range under default filtering")
	}
}

func TestAnalyzeEndpointWithTerm(t *testing.T) {
	t.Parallel()
	router := testRouter(t, kiwiFruityvice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"term": "kiwi"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var rec recommend.Recommendation
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Record == nil || rec.Analysis == nil {
		t.Fatalf("end-to-end response must include record and analysis: %s", w.Body.String())
	}
	if rec.Match == nil || rec.Match.MatchType != common.MatchTypeExact {
		t.Fatalf("kiwi should match the catalog exactly: %+v", rec.Match)
	}
}
