package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Webhook delivery (optional; batch results are pushed here)
	WebhookURL    string `yaml:"webhook_url"`
	WebhookAPIKey string `yaml:"webhook_api_key"`

	// Worker pool
	WorkerCount          int `yaml:"worker_count"`
	MaxQueueSize         int `yaml:"max_queue_size"`
	MaxConcurrentDecode  int `yaml:"max_concurrent_decode"`
	MaxConcurrentDeliver int `yaml:"max_concurrent_deliver"`

	// Request limits
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Decoder defaults
	MaxNestingLevel int      `yaml:"max_nesting_level"`
	TokenCacheSize  int      `yaml:"token_cache_size"`
	SkipElements    []string `yaml:"skip_elements"`
	ClassPrefix     string   `yaml:"class_prefix"`
	DebugDecoding   bool     `yaml:"debug_decoding"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`
}

// Load builds the configuration: defaults, then an optional YAML file named
// in CONFIG_FILE, then environment variables on top.
func Load() Config {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "config file %s: %v\n", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("INSIGHTDECK_API_KEY", cfg.APIKey)
	cfg.WebhookURL = envOr("WEBHOOK_URL", cfg.WebhookURL)
	cfg.WebhookAPIKey = envOr("WEBHOOK_API_KEY", cfg.WebhookAPIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentDecode = envInt("MAX_CONCURRENT_DECODE", cfg.MaxConcurrentDecode)
	cfg.MaxConcurrentDeliver = envInt("MAX_CONCURRENT_DELIVER", cfg.MaxConcurrentDeliver)

	cfg.MaxBodyBytes = envInt64("MAX_BODY_BYTES", cfg.MaxBodyBytes)

	cfg.MaxNestingLevel = envInt("MAX_NESTING_LEVEL", cfg.MaxNestingLevel)
	cfg.TokenCacheSize = envInt("TOKEN_CACHE_SIZE", cfg.TokenCacheSize)
	if v := os.Getenv("SKIP_ELEMENTS"); v != "" {
		cfg.SkipElements = splitList(v)
	}
	cfg.ClassPrefix = envOr("CLASS_PREFIX", cfg.ClassPrefix)
	cfg.DebugDecoding = envBool("DEBUG_DECODING", cfg.DebugDecoding)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	return clamp(cfg)
}

func defaults() Config {
	return Config{
		Port:                 "8092",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentDecode:  8,
		MaxConcurrentDeliver: 4,
		MaxBodyBytes:         4 << 20, // 4MB
		MaxNestingLevel:      5,
		TokenCacheSize:       512,
		JobTTL:               1 * time.Hour,
	}
}

func clamp(cfg Config) Config {
	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxConcurrentDecode <= 0 {
		cfg.MaxConcurrentDecode = d.MaxConcurrentDecode
	}
	if cfg.MaxConcurrentDeliver <= 0 {
		cfg.MaxConcurrentDeliver = d.MaxConcurrentDeliver
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = d.MaxBodyBytes
	}
	if cfg.MaxNestingLevel <= 0 {
		cfg.MaxNestingLevel = d.MaxNestingLevel
	}
	if cfg.TokenCacheSize < 0 {
		cfg.TokenCacheSize = d.TokenCacheSize
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("INSIGHTDECK_API_KEY is required")
	}
	if c.WebhookURL != "" && c.WebhookAPIKey == "" {
		return fmt.Errorf("WEBHOOK_API_KEY is required when WEBHOOK_URL is set")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
