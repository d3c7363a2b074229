package bootstrap

import (
	"context"
	"fmt"
	"time"

	"prime-research/internal/config"
	"prime-research/internal/controller"
	"prime-research/internal/handler"
	"prime-research/internal/metrics"
	"prime-research/internal/model"
	"prime-research/internal/pkg/logger"
	"prime-research/internal/repository/implementation"
	"prime-research/internal/repository/memory"
	"prime-research/internal/repository/unitofwork"
	"prime-research/internal/service"
	"prime-research/internal/websocket"
	"prime-research/pkg/ai/agents"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/reasoning"
	"prime-research/pkg/database"
	"prime-research/pkg/embedding"
	"prime-research/pkg/embedding/cache"
	"prime-research/pkg/embedding/jina"
	"prime-research/pkg/llm/factory"
	"prime-research/pkg/loader"
	"prime-research/pkg/search"
	"prime-research/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	bootstrapModule = "BOOTSTRAP"
	runRecordTTL    = 24 * time.Hour
)

// Constructors replaced in tests.
var (
	openDatabase   = database.NewGormDB
	newLLMProvider = factory.NewLLMProvider
)

type Container struct {
	Config  *config.Config
	Logger  *logger.ZapLogger
	Metrics *metrics.Collector
	DB      *gorm.DB

	// Services
	Knowledge service.IKnowledgeService
	Research  service.IResearchService
	Publisher service.IProgressPublisher
	Index     *vectorindex.Index

	// Controllers
	ResearchController controller.IResearchController
	SessionController  controller.ISessionController
	LogController      controller.ILogController

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	embeddingCache cache.ContentCache
	pubSub         *gochannel.GoChannel
	redis          *redis.Client
}

// NewContainer wires the research stack from configuration. Missing
// credentials and unusable stores are fatal and returned as errors.
func NewContainer(ctx context.Context, cfg *config.Config, sysLogger *logger.ZapLogger) (_ *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 1. Core Facades
	c := &Container{
		Config:  cfg,
		Logger:  sysLogger,
		Metrics: metrics.NewCollector("prime"),
	}

	db, err := openDatabase(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
		Path:   cfg.Database.Path,
		Quiet:  cfg.App.Environment == "test",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}
	c.DB = db
	defer func() {
		if err != nil {
			_ = c.closeConnections()
		}
	}()

	if err := migrate(db, cfg); err != nil {
		return nil, err
	}

	collector := c.Metrics
	uowFactory := unitofwork.NewRepositoryFactory(db)
	knowledge := service.NewKnowledgeService(uowFactory, sysLogger, collector)
	c.Knowledge = knowledge

	// 2. Embedding
	provider, err := newEmbeddingProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	sysLogger.Info(bootstrapModule, "Embedding provider ready", map[string]interface{}{
		"provider": provider.Name(),
	})

	c.embeddingCache = c.newEmbeddingCache(ctx)
	embedder := embedding.NewBatchedEmbedder(
		provider,
		c.embeddingCache,
		embedding.BatchConfig{
			BatchSize:   cfg.Embedding.BatchSize,
			BatchDelay:  cfg.Embedding.BatchDelay,
			MaxAttempts: cfg.Embedding.MaxAttempts,
		},
		sysLogger,
		embedding.WithMetrics(collector),
	)

	var store vectorindex.Store
	if cfg.Vector.Backend == "pgvector" {
		store = implementation.NewChunkEmbeddingRepository(db, cfg.Vector.Collection)
	} else {
		store = vectorindex.NewMemoryStore()
	}
	c.Index = vectorindex.New(embedder, store, cfg.Vector.BatchSize, sysLogger, collector)

	// 3. Reasoning
	llmProvider, err := newLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		APIKey:   cfg.Keys.GoogleGemini,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	sysLogger.Info(bootstrapModule, "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	reasoner := reasoning.NewService(llmProvider, reasoning.DefaultBreakerConfig(), sysLogger,
		reasoning.WithMaxOutputTokens(cfg.Ai.MaxOutputTokens),
		reasoning.WithStructuredModel(cfg.Ai.StructuredModel),
	)

	// 4. Pipeline
	settings := agents.DefaultSettings()
	settings.ChunkSize = cfg.Research.ChunkSize
	settings.ChunkOverlap = cfg.Research.ChunkOverlap
	settings.ResultsPerDepth = cfg.Research.ResultsPerDepth
	settings.CredibilityDelay = cfg.Research.CredibilityDelay
	settings.SummaryContextK = cfg.Research.SummaryContextK
	settings.QuizQuestions = cfg.Research.QuizQuestions

	stages := agents.Stages(agents.Deps{
		Reasoner: reasoner,
		Index:    c.Index,
		Store:    knowledge,
		Searcher: search.NewDuckDuckGo(cfg.Research.FetchTimeout),
		Web:      loader.NewWebLoader(cfg.Research.FetchTimeout),
		Files:    loader.NewFileLoader(),
		Logger:   sysLogger,
		Settings: settings,
	})
	executor := pipeline.NewExecutor(stages, sysLogger, collector)

	// 5. Event Bus
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NopLogger{},
	)
	c.Publisher = service.NewProgressPublisher(c.pubSub, sysLogger)

	c.Research = service.NewResearchService(
		executor,
		knowledge,
		c.Index,
		memory.NewRunRepository(runRecordTTL),
		c.Publisher,
		sysLogger,
	)

	// 6. Controllers
	c.WebSocketHub = websocket.NewHub(sysLogger)
	c.ProgressHandler = handler.NewProgressHandler(c.WebSocketHub, sysLogger)
	c.ResearchController = controller.NewResearchController(c.Research)
	c.SessionController = controller.NewSessionController(knowledge, c.Research)
	c.LogController = controller.NewLogController(sysLogger)

	return c, nil
}

// Close waits for background runs until ctx is done, then persists the
// embedding cache and releases connections. An expired ctx still releases
// everything and is reported as the error.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error

	done := make(chan struct{})
	go func() {
		c.Research.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.Logger.Warn(bootstrapModule, "Shutdown deadline reached with research runs in flight", map[string]interface{}{"error": ctx.Err()})
		firstErr = ctx.Err()
	}

	if err := c.embeddingCache.Flush(context.WithoutCancel(ctx)); err != nil {
		c.Logger.Error(bootstrapModule, "Failed to flush embedding cache", map[string]interface{}{"error": err})
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := c.pubSub.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.closeConnections(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Container) closeConnections() error {
	var firstErr error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func migrate(db *gorm.DB, cfg *config.Config) error {
	models := model.ResearchModels()
	withVector := cfg.Vector.Backend == "pgvector"
	if withVector {
		models = append(models, model.VectorModels()...)
	}
	if err := database.Migrate(db, withVector, models...); err != nil {
		return fmt.Errorf("failed to prepare knowledge store: %w", err)
	}
	return nil
}

// Migrate opens the configured database and creates every table the
// configured backends need.
func Migrate(cfg *config.Config) error {
	db, err := openDatabase(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
		Path:   cfg.Database.Path,
		Quiet:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to open knowledge store: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	return migrate(db, cfg)
}

func newEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina), nil
	default:
		return embedding.NewGeminiProvider(ctx, cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
	}
}

// newEmbeddingCache falls back to the file cache when Redis is unreachable.
func (c *Container) newEmbeddingCache(ctx context.Context) cache.ContentCache {
	cfg := c.Config.Embedding
	if cfg.CacheBackend == "redis" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			c.Logger.Warn(bootstrapModule, "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err})
			opt = &redis.Options{Addr: cfg.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			c.Logger.Warn(bootstrapModule, "Redis unreachable, using file cache", map[string]interface{}{"error": err})
			rdb.Close()
			return cache.NewFileCache(cfg.CachePath, c.Logger)
		}
		c.redis = rdb
		return cache.NewRedisCache(rdb, c.Logger)
	}
	return cache.NewFileCache(cfg.CachePath, c.Logger)
}
