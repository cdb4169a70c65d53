package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nutri-engine/internal/infrastructure/config"
	"nutri-engine/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "nutrition:record:"

// Entry 快取條目，包裝一筆營養紀錄
type Entry struct {
	Record   common.NutritionRecord `json:"record"`
	CachedAt time.Time              `json:"cached_at"`
	TTL      time.Duration          `json:"ttl"`
}

// ExpiresAt 到期時間
func (e Entry) ExpiresAt() time.Time {
	return e.CachedAt.Add(e.TTL)
}

// Expired 是否已過期（now ≥ expiresAt 即視為過期）
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// stats 快取統計
type stats struct {
	hits      int64
	misses    int64
	evictions int64
	staleHits int64
}

// Store 兩層 TTL 快取：記憶體為即時層，Redis 為持久層
// 持久層只在啟動時讀取，set/delete 時寫入；Redis 故障降級為純記憶體運作
// 單一 Store 由一個資料擷取服務獨佔，外部不得直接變更
type Store struct {
	mu    sync.RWMutex
	live  map[string]Entry
	stale map[string]Entry // Get 懶惰淘汰時降級至此，僅供 GetStale 讀取
	order []string         // FIFO 順序，僅在設定 maxEntries 時使用

	defaultTTL time.Duration
	maxEntries int
	rdb        *redis.Client
	stats      stats
}

// NewStore 建立快取
func NewStore(cfg *config.CacheConfig, rdb *redis.Client) *Store {
	s := &Store{
		live:       make(map[string]Entry),
		stale:      make(map[string]Entry),
		defaultTTL: cfg.TTL,
		maxEntries: cfg.MaxEntries,
		rdb:        rdb,
	}

	common.LogInfo("快取已初始化",
		zap.Duration("存活時間", cfg.TTL),
		zap.Int("最大容量", cfg.MaxEntries),
		zap.Bool("持久層", rdb != nil),
	)

	return s
}

// NormalizeKey 快取鍵標準化，讀寫兩側必須一致
func NormalizeKey(raw string) string {
	return common.NormalizeTerm(raw)
}

// Get 取得未過期的快取紀錄。過期條目視為不存在，並懶惰降級到 stale 存放區
// （過期紀錄唯一的合法讀取路徑是 GetStale）
func (s *Store) Get(key string) (*common.NutritionRecord, bool) {
	k := NormalizeKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.live[k]
	if !exists {
		s.stats.misses++
		return nil, false
	}

	if entry.Expired(time.Now()) {
		delete(s.live, k)
		s.removeFromOrder(k)
		s.stale[k] = entry
		s.stats.evictions++
		s.stats.misses++
		common.LogDebug("快取已過期", zap.String("鍵", k))
		return nil, false
	}

	s.stats.hits++
	rec := entry.Record
	return &rec, true
}

// GetStale 取得快取紀錄，包含已過期者。僅供全來源失敗後的備援路徑使用
func (s *Store) GetStale(key string) (*common.NutritionRecord, bool) {
	k := NormalizeKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.live[k]; exists {
		s.stats.staleHits++
		rec := entry.Record
		return &rec, true
	}
	if entry, exists := s.stale[k]; exists {
		s.stats.staleHits++
		rec := entry.Record
		return &rec, true
	}
	return nil, false
}

// Has 是否存在未過期的條目
func (s *Store) Has(key string) bool {
	k := NormalizeKey(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.live[k]
	return exists && !entry.Expired(time.Now())
}

// Set 寫入快取；ttl ≤ 0 時使用預設 TTL。新寫入靜默覆蓋同鍵舊條目
func (s *Store) Set(ctx context.Context, key string, record *common.NutritionRecord, ttl time.Duration) {
	if record == nil {
		return
	}
	k := NormalizeKey(key)
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	entry := Entry{
		Record:   *record,
		CachedAt: time.Now(),
		TTL:      ttl,
	}

	s.mu.Lock()
	// FIFO 淘汰，僅在呼叫端設定容量上限時生效
	if s.maxEntries > 0 {
		if _, exists := s.live[k]; !exists {
			s.order = append(s.order, k)
			if len(s.live)+1 > s.maxEntries {
				oldest := s.order[0]
				s.order = s.order[1:]
				delete(s.live, oldest)
				s.stats.evictions++
				common.LogDebug("快取已淘汰(FIFO)", zap.String("鍵", oldest))
			}
		}
	}
	s.live[k] = entry
	delete(s.stale, k)
	s.mu.Unlock()

	s.persist(ctx, k, entry)
	common.LogDebug("快取已儲存", zap.String("鍵", k), zap.Duration("ttl", ttl))
}

// Delete 刪除條目（即時層、stale 層與持久層一併移除）
func (s *Store) Delete(ctx context.Context, key string) {
	k := NormalizeKey(key)

	s.mu.Lock()
	delete(s.live, k)
	delete(s.stale, k)
	s.removeFromOrder(k)
	s.mu.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, redisKeyPrefix+k).Err(); err != nil {
			common.LogWarn("持久層刪除失敗", zap.String("鍵", k), zap.Error(err))
		}
	}
}

// InvalidateExpired 明確清除所有過期條目（含 stale 存放區），回傳清除的即時層條目數
func (s *Store) InvalidateExpired() int {
	now := time.Now()
	count := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.live {
		if entry.Expired(now) {
			delete(s.live, key)
			s.removeFromOrder(key)
			count++
			s.stats.evictions++
		}
	}
	s.stale = make(map[string]Entry)

	if count > 0 {
		common.LogInfo("過期快取已清除", zap.Int("數量", count))
	}
	return count
}

// LoadPersisted 啟動時載入持久層條目，已過期者直接丟棄
func (s *Store) LoadPersisted(ctx context.Context) (int, error) {
	if s.rdb == nil {
		return 0, nil
	}

	var cursor uint64
	loaded := 0
	now := time.Now()

	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return loaded, err
		}

		for _, rkey := range keys {
			data, err := s.rdb.Get(ctx, rkey).Bytes()
			if err != nil {
				continue
			}
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				common.LogWarn("持久層條目損毀，略過", zap.String("鍵", rkey), zap.Error(err))
				continue
			}
			if entry.Expired(now) {
				_ = s.rdb.Del(ctx, rkey).Err()
				continue
			}

			k := rkey[len(redisKeyPrefix):]
			s.mu.Lock()
			if _, exists := s.live[k]; !exists {
				s.live[k] = entry
				if s.maxEntries > 0 {
					s.order = append(s.order, k)
				}
				loaded++
			}
			s.mu.Unlock()
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	common.LogInfo("持久層快取已載入", zap.Int("數量", loaded))
	return loaded, nil
}

// Stats 快取統計信息
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.stats.hits + s.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(s.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":       len(s.live),
		"stale_size": len(s.stale),
		"hits":       s.stats.hits,
		"misses":     s.stats.misses,
		"stale_hits": s.stats.staleHits,
		"evictions":  s.stats.evictions,
		"hit_ratio":  hitRatio,
	}
}

// persist 寫入持久層。不設 Redis 端到期時間，到期語意由本引擎判斷，
// 過期條目才能在全來源失敗時作為備援使用
func (s *Store) persist(ctx context.Context, key string, entry Entry) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		common.LogWarn("持久層序列化失敗", zap.String("鍵", key), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		common.LogWarn("持久層寫入失敗", zap.String("鍵", key), zap.Error(err))
	}
}

// removeFromOrder 自 FIFO 順序移除鍵，呼叫端需持有寫鎖
func (s *Store) removeFromOrder(key string) {
	if s.maxEntries <= 0 {
		return
	}
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
