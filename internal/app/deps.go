package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"doc-summarizer/internal/cache"
	"doc-summarizer/internal/config"
	"doc-summarizer/internal/llm"
	"doc-summarizer/internal/logger"
	"doc-summarizer/internal/metrics"
	"doc-summarizer/internal/queue"
	"doc-summarizer/internal/store"
	"doc-summarizer/internal/summarize"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Cache    cache.Cache
	LLM      llm.Client
	Metrics  metrics.Recorder
	Registry *prometheus.Registry
}

// Build loads env, config, and shared components.
// The model is loaded eagerly; a service that cannot load it does not start.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	c := buildCache(cfg, log)
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Cache:    c,
		LLM:      llmClient,
		Metrics:  metrics.NewPrometheusRecorder(reg),
		Registry: reg,
	}, nil
}

// Close releases connections held by the dependencies.
func (d Deps) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("failed to close cache", "err", err)
		}
	}
	if c, ok := d.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.Log.Warn("failed to close store", "err", err)
		}
	}
}

// NewOrchestrator wires the configured model, cache and thresholds into an Orchestrator.
func NewOrchestrator(d Deps) *summarize.Orchestrator {
	cfg := d.Config
	modelAdapter := summarize.NewModelAdapter(d.LLM, cfg.SummaryMaxLength, cfg.SummaryMinLength)
	maxLen, minLen := modelAdapter.Bounds()

	var adapter summarize.Adapter = modelAdapter
	if d.Cache != nil {
		adapter = summarize.NewCachedAdapter(modelAdapter, d.Cache, cachePrefix(cfg, maxLen, minLen), cfg.SummaryCacheDuration(), d.Log)
	}

	return summarize.NewOrchestrator(adapter, summarize.Options{
		MaxChunkLength:           cfg.MaxChunkLength,
		MinWordsForSummarization: cfg.MinWordsForSummarization,
		MinWordsPerChunk:         cfg.MinWordsPerChunk,
		FallbackTruncationLength: cfg.FallbackTruncationLength,
	}, d.Log, d.Metrics)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("doc-summarizer"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to the no-op cache when Redis is unreachable.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c
	default:
		log.Info("caching disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	loader, err := modelLoader(cfg)
	if err != nil {
		return nil, err
	}
	lazy := llm.NewLazy(loader)
	if err := lazy.Load(); err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", cfg.LLMProvider, err)
	}
	log.Info("model loaded", "provider", cfg.LLMProvider, "model", modelName(cfg))

	var client llm.Client = lazy
	if cfg.LLMRateLimit > 0 {
		client = llm.NewRateLimitedClient(client, cfg.LLMRateLimit, cfg.LLMRateBurst)
	}
	return llm.NewBreakerClient(client, llm.DefaultBreakerSettings(cfg.LLMProvider), log), nil
}

func modelLoader(cfg config.Config) (llm.Loader, error) {
	timeout := cfg.LLMCallTimeout()
	switch cfg.LLMProvider {
	case "openai":
		return func() (llm.Client, error) {
			if cfg.OpenAIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
			}
			return llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(modelName(cfg)), timeout)
		}, nil
	case "anthropic":
		return func() (llm.Client, error) {
			if cfg.AnthropicKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
			}
			return llm.NewAnthropicClient(cfg.AnthropicKey, anthropic.Model(modelName(cfg)), timeout)
		}, nil
	case "basic":
		return func() (llm.Client, error) { return llm.NewBasicClient(), nil }, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, anthropic, basic)", cfg.LLMProvider)
	}
}

// cachePrefix scopes cached chunk summaries to the model and bounds that produced them.
func cachePrefix(cfg config.Config, maxLen, minLen int) string {
	return fmt.Sprintf("%s:%s:%d:%d", cfg.LLMProvider, modelName(cfg), maxLen, minLen)
}

// modelName keeps the OpenAI default from leaking into an Anthropic request.
func modelName(cfg config.Config) string {
	switch cfg.LLMProvider {
	case "anthropic":
		if !strings.HasPrefix(cfg.LLMModel, "claude") {
			return string(llm.DefaultAnthropicModel)
		}
	case "basic":
		return "extractive"
	}
	return cfg.LLMModel
}
