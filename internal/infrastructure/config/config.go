package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Provider ProviderConfig `mapstructure:"provider"`
	Match    MatchConfig    `mapstructure:"match"`
	Safety   SafetyConfig   `mapstructure:"safety"`
	LogLevel string         `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// FetchConfig 資料擷取設定（重試、退避、逾時）
type FetchConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UseCache   bool          `mapstructure:"use_cache"`
}

// CacheConfig 快取設定
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"` // 0 表示不設上限
}

// RedisConfig 持久化快取後端設定
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ProviderConfig 營養資料供應商設定
type ProviderConfig struct {
	PrimaryBaseURL   string `mapstructure:"primary_base_url"`
	SecondaryBaseURL string `mapstructure:"secondary_base_url"`
	SecondaryAPIKey  string `mapstructure:"secondary_api_key"`
}

// MatchConfig 水果配對設定
type MatchConfig struct {
	MinSimilarityThreshold float64 `mapstructure:"min_similarity_threshold"`
	IncludeSynonyms        bool    `mapstructure:"include_synonyms"`
	CatalogPath            string  `mapstructure:"catalog_path"`
}

// SafetyConfig 安全篩選設定
type SafetyConfig struct {
	FilterUnsafe bool `mapstructure:"filter_unsafe"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時不視為錯誤）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("provider.primary_base_url", "PRIMARY_PROVIDER_URL")
	viper.BindEnv("provider.secondary_base_url", "SECONDARY_PROVIDER_URL")
	viper.BindEnv("provider.secondary_api_key", "SECONDARY_PROVIDER_API_KEY")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("fetch.use_cache", "USE_CACHE")
	viper.BindEnv("match.catalog_path", "CATALOG_PATH")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "nutri-engine")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 擷取設定
	viper.SetDefault("fetch.max_retries", 3)
	viper.SetDefault("fetch.retry_delay", "1s")
	viper.SetDefault("fetch.timeout", "10s")
	viper.SetDefault("fetch.use_cache", true)

	// 快取設定
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.max_entries", 0)

	// Redis 設定
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 供應商設定
	viper.SetDefault("provider.primary_base_url", "https://www.fruityvice.com")
	viper.SetDefault("provider.secondary_base_url", "https://api.api-ninjas.com")

	// 配對設定
	viper.SetDefault("match.min_similarity_threshold", 50.0)
	viper.SetDefault("match.include_synonyms", true)

	// 安全設定
	viper.SetDefault("safety.filter_unsafe", true)

	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證擷取設定
	if config.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("invalid fetch max retries")
	}
	if config.Fetch.RetryDelay <= 0 {
		return fmt.Errorf("invalid fetch retry delay")
	}
	if config.Fetch.Timeout <= 0 {
		return fmt.Errorf("invalid fetch timeout")
	}

	// 驗證快取設定
	if config.Fetch.UseCache && config.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}

	// 驗證配對設定
	if config.Match.MinSimilarityThreshold < 0 || config.Match.MinSimilarityThreshold > 100 {
		return fmt.Errorf("invalid similarity threshold")
	}

	// 驗證供應商設定
	if config.Provider.PrimaryBaseURL == "" || config.Provider.SecondaryBaseURL == "" {
		return fmt.Errorf("provider base urls are required")
	}

	return nil
}
