package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/xxxsen/common/logger"
)

var collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// GlobalCollection is the virtual selector meaning "no retrieval, answer from
// general knowledge". It is never a real collection in the vector store.
const GlobalCollection = "global"

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	Collections   []string         `json:"collections"`
	Chunking      ChunkingConfig   `json:"chunking"`
	AI            AIConfig         `json:"ai"`
	FileStore     *FileStoreConfig `json:"file_store"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	ReconcileCron string           `json:"reconcile_cron"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

type AIConfig struct {
	Chat           ProviderConfig  `json:"chat"`
	Embedding      EmbeddingConfig `json:"embedding"`
	TimeoutSeconds int             `json:"timeout_seconds"`
	Cache          CacheConfig     `json:"cache"`
}

type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type EmbeddingConfig struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	Data      interface{} `json:"data"`
}

type CacheConfig struct {
	Size       int `json:"size"`
	TTLMinutes int `json:"ttl_minutes"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
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
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if len(cfg.Collections) == 0 {
		return fmt.Errorf("at least one collection is required")
	}
	seen := map[string]bool{}
	for _, name := range cfg.Collections {
		if !collectionNameRe.MatchString(name) {
			return fmt.Errorf("invalid collection name: %q", name)
		}
		if name == GlobalCollection {
			return fmt.Errorf("collection name %q is reserved", GlobalCollection)
		}
		if seen[name] {
			return fmt.Errorf("duplicate collection name: %q", name)
		}
		seen[name] = true
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Chunking.ChunkSize < 0 || cfg.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("chunking sizes must be positive")
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be smaller than chunking.chunk_size")
	}
	if cfg.AI.Chat.Provider == "" || cfg.AI.Chat.Model == "" {
		return fmt.Errorf("ai.chat provider and model are required")
	}
	if cfg.AI.Embedding.Provider == "" || cfg.AI.Embedding.Model == "" {
		return fmt.Errorf("ai.embedding provider and model are required")
	}
	if cfg.AI.Embedding.Dimension <= 0 {
		return fmt.Errorf("ai.embedding.dimension is required")
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ReconcileCron == "" {
		cfg.ReconcileCron = "*/30 * * * *"
	}
	return nil
}
