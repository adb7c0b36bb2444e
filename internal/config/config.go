package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	AI            AIConfig         `json:"ai"`
	KB            KBConfig         `json:"kb"`
	FixedQA       FixedQAConfig    `json:"fixed_qa"`
	Weather       WeatherConfig    `json:"weather"`
	Session       SessionConfig    `json:"session"`
	Auth          AuthConfig       `json:"auth"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Data     interface{} `json:"data"`
	// Providers lists failover backends tried in order. When set it takes
	// precedence over the single Provider/Data pair.
	Providers            []AIProviderConfig `json:"providers"`
	Model                string             `json:"model"`
	EmbedModel           string             `json:"embed_model"`
	Timeout              int                `json:"timeout"`
	Temperature          float64            `json:"temperature"`
	TopP                 float64            `json:"top_p"`
	MaxTokens            int                `json:"max_tokens"`
	EmbedCacheSize       int                `json:"embed_cache_size"`
	EmbedCacheTTLMinutes int                `json:"embed_cache_ttl_minutes"`
}

type AIProviderConfig struct {
	Provider string      `json:"provider"`
	Data     interface{} `json:"data"`
}

// Backends returns the provider list to build AI clients from. When
// ai.providers is empty it falls back to the single ai.provider pair.
func (c *AIConfig) Backends() []AIProviderConfig {
	if len(c.Providers) > 0 {
		return c.Providers
	}
	return []AIProviderConfig{{Provider: c.Provider, Data: c.Data}}
}

type KBConfig struct {
	ChunkSize        int             `json:"chunk_size"`
	ChunkOverlap     int             `json:"chunk_overlap"`
	FineChunkSize    int             `json:"fine_chunk_size"`
	FineChunkOverlap int             `json:"fine_chunk_overlap"`
	DefaultTopK      int             `json:"default_top_k"`
	Store            KBStoreConfig   `json:"store"`
	FileStore        FileStoreConfig `json:"file_store"`
	Database         DatabaseConfig  `json:"database"`
}

type KBStoreConfig struct {
	Type   string `json:"type"`
	Prefix string `json:"prefix"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FixedQAConfig struct {
	Path      string  `json:"path"`
	Threshold float64 `json:"threshold"`
}

type WeatherConfig struct {
	Type    string `json:"type"`
	Timeout int    `json:"timeout"`
}

type SessionConfig struct {
	Window         int    `json:"window"`
	MaxIdleMinutes int    `json:"max_idle_minutes"`
	CleanupSpec    string `json:"cleanup_spec"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
	TTLHours  int    `json:"ttl_hours"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AI.Provider == "" && len(cfg.AI.Providers) == 0 {
		return nil, fmt.Errorf("ai.provider or ai.providers is required")
	}
	for i, p := range cfg.AI.Providers {
		if p.Provider == "" {
			return nil, fmt.Errorf("ai.providers[%d].provider is required", i)
		}
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 120
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.TopP == 0 {
		cfg.AI.TopP = 0.8
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 2048
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 4096
	}
	if cfg.AI.EmbedCacheTTLMinutes == 0 {
		cfg.AI.EmbedCacheTTLMinutes = 120
	}
	if cfg.KB.ChunkSize == 0 {
		cfg.KB.ChunkSize = 500
	}
	if cfg.KB.ChunkOverlap == 0 {
		cfg.KB.ChunkOverlap = 100
	}
	if cfg.KB.FineChunkSize == 0 {
		cfg.KB.FineChunkSize = 200
	}
	if cfg.KB.FineChunkOverlap == 0 {
		cfg.KB.FineChunkOverlap = 50
	}
	if cfg.KB.DefaultTopK == 0 {
		cfg.KB.DefaultTopK = 3
	}
	if cfg.KB.Store.Type == "" {
		cfg.KB.Store.Type = "file"
	}
	switch cfg.KB.Store.Type {
	case "file":
		if cfg.KB.FileStore.Type == "" {
			return nil, fmt.Errorf("kb.file_store.type is required for file index store")
		}
	case "postgres":
		if cfg.KB.Database.DSN == "" && cfg.KB.Database.Host == "" {
			return nil, fmt.Errorf("kb.database host or dsn is required for postgres index store")
		}
	default:
		return nil, fmt.Errorf("kb.store.type must be file or postgres")
	}
	if cfg.FixedQA.Threshold == 0 {
		cfg.FixedQA.Threshold = 0.70
	}
	if cfg.Weather.Type == "" {
		cfg.Weather.Type = "mock"
	}
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = 10
	}
	if cfg.Session.Window == 0 {
		cfg.Session.Window = 4
	}
	if cfg.Session.MaxIdleMinutes == 0 {
		cfg.Session.MaxIdleMinutes = 60
	}
	if cfg.Session.CleanupSpec == "" {
		cfg.Session.CleanupSpec = "*/10 * * * *"
	}
	if cfg.Auth.TTLHours == 0 {
		cfg.Auth.TTLHours = 72
	}
	return &cfg, nil
}
