package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the gateway and the summarizer worker.
type Config struct {
	// Server
	Port       int    `env:"PORT" envDefault:"8080"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limits
	MaxUploadSize     int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxSyncTextLength int   `env:"MAX_SYNC_TEXT_LENGTH" envDefault:"200000"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"`
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"`
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider   string `env:"CACHE_PROVIDER" envDefault:"redis"` // "redis" or "none"
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	SummaryCacheTTL int    `env:"SUMMARY_CACHE_TTL" envDefault:"86400"` // seconds
	ProgressTTL     int    `env:"PROGRESS_TTL" envDefault:"3600"`       // seconds

	// Model
	LLMProvider  string  `env:"LLM_PROVIDER" envDefault:"openai"` // "openai", "anthropic" or "basic"
	OpenAIKey    string  `env:"OPENAI_API_KEY"`
	AnthropicKey string  `env:"ANTHROPIC_API_KEY"`
	LLMModel     string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout   int     `env:"LLM_TIMEOUT" envDefault:"60"`   // seconds per model call
	LLMRateLimit float64 `env:"LLM_RATE_LIMIT" envDefault:"0"` // model calls per second; 0 disables limiting
	LLMRateBurst int     `env:"LLM_RATE_BURST" envDefault:"1"`

	// Summarization. Thresholds <= 0 take the built-in default; set
	// MIN_WORDS_FOR_SUMMARIZATION=1 to summarize every non-empty text.
	MaxChunkLength           int `env:"MAX_CHUNK_LENGTH" envDefault:"1024"`
	MinWordsForSummarization int `env:"MIN_WORDS_FOR_SUMMARIZATION" envDefault:"50"`
	MinWordsPerChunk         int `env:"MIN_WORDS_PER_CHUNK" envDefault:"10"`
	SummaryMaxLength         int `env:"SUMMARY_MAX_LENGTH" envDefault:"150"`
	SummaryMinLength         int `env:"SUMMARY_MIN_LENGTH" envDefault:"30"`
	FallbackTruncationLength int `env:"FALLBACK_TRUNCATION_LENGTH" envDefault:"200"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// SummaryCacheDuration returns SummaryCacheTTL as a duration.
func (c Config) SummaryCacheDuration() time.Duration {
	return time.Duration(c.SummaryCacheTTL) * time.Second
}

// ProgressDuration returns ProgressTTL as a duration.
func (c Config) ProgressDuration() time.Duration {
	return time.Duration(c.ProgressTTL) * time.Second
}

// LLMCallTimeout returns LLMTimeout as a duration.
func (c Config) LLMCallTimeout() time.Duration {
	return time.Duration(c.LLMTimeout) * time.Second
}
