package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	dbPostgres "github.com/kailas-cloud/talentdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/talentdex/internal/db/redis"
	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/extract"
	"github.com/kailas-cloud/talentdex/internal/fetch"
	"github.com/kailas-cloud/talentdex/internal/metrics"
	candidaterepo "github.com/kailas-cloud/talentdex/internal/repository/candidate"
	"github.com/kailas-cloud/talentdex/internal/repository/embcache"
	geminiEmb "github.com/kailas-cloud/talentdex/internal/transport/gemini"
	openaiEmb "github.com/kailas-cloud/talentdex/internal/transport/openai"
	candidateuc "github.com/kailas-cloud/talentdex/internal/usecase/candidate"
	embeddinguc "github.com/kailas-cloud/talentdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
	rebuilduc "github.com/kailas-cloud/talentdex/internal/usecase/rebuild"
	"github.com/kailas-cloud/talentdex/internal/usecase/scheduler"
	searchuc "github.com/kailas-cloud/talentdex/internal/usecase/search"
)

// cacheStore is what the embedding cache needs from a key-value store.
type cacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// application is the composition root shared by serve and rebuild.
type application struct {
	candidates *candidateuc.Service
	search     *searchuc.Service
	rebuild    *rebuilduc.Service
	health     *healthuc.Service
	scheduler  *scheduler.Scheduler
	logger     *zap.Logger

	closers []func()
}

func newApplication(ctx context.Context, cfg config.Config, logger *zap.Logger) (*application, error) {
	a := &application{logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeStores()
		}
	}()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	// Candidate store, plus the store that backs the embedding cache (nil = no cache)
	var (
		repo       *candidaterepo.Repo
		dbPinger   healthuc.Pinger
		cache      cacheStore
		cacheIsOwn bool
	)
	switch cfg.Database.Driver {
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		repo = candidaterepo.NewRedis(store, cfg.Storage.KeyPrefix, logger)
		dbPinger = store
		cache = store
	case "postgres":
		store, err := dbPostgres.NewStore(dbPostgres.Config{
			URL:          cfg.Database.URL,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return nil, fmt.Errorf("postgres not ready: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo = candidaterepo.NewPostgres(store, logger)
		dbPinger = store

		if len(cfg.Embedding.Cache.Addrs) > 0 {
			cs, err := dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Embedding.Cache.Addrs,
				Password: cfg.Embedding.Cache.Password,
			})
			if err != nil {
				return nil, fmt.Errorf("create embedding cache store: %w", err)
			}
			a.closers = append(a.closers, cs.Close)
			if err := cs.WaitForReady(ctx, readiness); err != nil {
				logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
			} else {
				cache = cs
				cacheIsOwn = true
			}
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// Embedder chain: provider -> cache -> instrumented -> instruction
	base, err := buildProvider(ctx, cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}
	docEmbedder := buildEmbedder(base, cfg, cache, cfg.Embedding.DocumentInstruction, logger)
	queryEmbedder := buildEmbedder(base, cfg, cache, cfg.Embedding.QueryInstruction, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cache != nil),
	)

	fetcher := fetch.New(fetch.Config{
		Timeout:   time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
	}, extract.New(logger), logger)

	pipeline := embeddinguc.NewPipeline(repo, docEmbedder, logger)

	a.scheduler = scheduler.New(pipeline, fetcher, scheduler.Options{
		Workers:     cfg.Scheduler.Workers,
		QueueSize:   cfg.Scheduler.QueueSize,
		TaskTimeout: time.Duration(cfg.Scheduler.TaskTimeout) * time.Second,
	}, logger)

	a.rebuild = rebuilduc.New(repo, pipeline, fetcher, logger).
		WithConcurrency(cfg.Rebuild.Concurrency)
	a.search = searchuc.New(repo, queryEmbedder).
		WithKeywordMatch(searchuc.KeywordMatch(cfg.Search.KeywordMatch)).
		WithMinScore(cfg.Search.MinScore)
	a.candidates = candidateuc.New(repo, a.scheduler).
		WithPagination(cfg.HTTP.DefaultPageSize, cfg.HTTP.MaxPageSize)

	a.health = healthuc.New(dbPinger, newEmbeddingHealthChecker(docEmbedder), logger)
	if cacheIsOwn {
		a.health = a.health.WithCache(cache)
	}

	ok = true
	return a, nil
}

// Close drains the background scheduler, then closes the stores.
func (a *application) Close(ctx context.Context) {
	if a.scheduler != nil {
		if err := a.scheduler.Close(ctx); err != nil {
			a.logger.Warn("Embedding scheduler did not drain", zap.Error(err))
		}
	}
	a.closeStores()
}

func (a *application) closeStores() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// buildProvider creates the base embedding provider. A missing API key still
// yields a provider: it reports domain.ErrEmbeddingNotConfigured on use.
func buildProvider(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case "gemini":
		e, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    timeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		return e, nil
	default:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    timeout,
			Logger:     logger,
		}), nil
	}
}

// buildEmbedder wraps the provider: cached -> instrumented -> instruction prefix.
func buildEmbedder(
	base domain.Embedder,
	cfg config.Config,
	cache cacheStore,
	instruction string,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix: cfg.Storage.KeyPrefix,
			Model:     cfg.Embedding.Model,
			TTL:       time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	// outermost: the cache key includes the instruction
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
