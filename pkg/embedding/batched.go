package embedding

import (
	"context"
	"fmt"
	"time"

	"prime-research/internal/metrics"
	"prime-research/internal/pkg/logger"
	"prime-research/pkg/embedding/cache"

	"github.com/cenkalti/backoff/v5"
)

const embedderModule = "EMBEDDER"

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type BatchConfig struct {
	BatchSize   int
	BatchDelay  time.Duration
	MaxAttempts int
}

// BatchedEmbedder turns texts into vectors through a rate-limited provider.
// Cached texts never reach the provider; the rest go out in small paced
// batches, and rate-limited batches are retried with exponential backoff
// starting at BatchDelay.
type BatchedEmbedder struct {
	provider Provider
	cache    cache.ContentCache
	cfg      BatchConfig
	logger   logger.ILogger
	metrics  *metrics.Collector
	sleep    Sleeper
}

type Option func(*BatchedEmbedder)

func WithSleeper(s Sleeper) Option {
	return func(e *BatchedEmbedder) { e.sleep = s }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(e *BatchedEmbedder) { e.metrics = m }
}

func NewBatchedEmbedder(provider Provider, c cache.ContentCache, cfg BatchConfig, log logger.ILogger, opts ...Option) *BatchedEmbedder {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	e := &BatchedEmbedder{
		provider: provider,
		cache:    c,
		cfg:      cfg,
		logger:   log,
		sleep:    ContextSleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pendingText is one distinct uncached text and every input position it fills.
type pendingText struct {
	key       string
	text      string
	positions []int
}

// Embed returns one vector per text in input order. Exhausted rate-limit
// retries and non-rate-limit provider failures are returned as errors; vectors
// fetched before the failure stay cached. If the provider answers a batch with
// fewer vectors than requested, the unanswered positions are left out of the
// result, so the result can be shorter than texts.
func (e *BatchedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	filled := make([]bool, len(texts))

	var pending []*pendingText
	byKey := make(map[string]*pendingText)
	hits := 0

	for i, text := range texts {
		key := cache.Fingerprint(text)
		if vector, ok := e.cache.Get(ctx, key); ok {
			results[i] = vector
			filled[i] = true
			hits++
			continue
		}
		if p, ok := byKey[key]; ok {
			p.positions = append(p.positions, i)
			continue
		}
		p := &pendingText{key: key, text: text, positions: []int{i}}
		byKey[key] = p
		pending = append(pending, p)
	}
	e.metrics.RecordCache(hits, len(texts)-hits)

	if len(pending) > 0 {
		e.logger.Info(embedderModule, "Embedding uncached texts", map[string]interface{}{
			"provider": e.provider.Name(),
			"total":    len(texts),
			"cached":   hits,
			"to_fetch": len(pending),
		})
	}

	defer func() {
		if err := e.cache.Flush(ctx); err != nil {
			e.logger.Error(embedderModule, "Failed to persist embedding cache", map[string]interface{}{
				"error": err,
			})
		}
	}()

	for start := 0; start < len(pending); start += e.cfg.BatchSize {
		if start > 0 {
			if err := e.sleep(ctx, e.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}

		end := min(start+e.cfg.BatchSize, len(pending))
		batch := pending[start:end]

		batchTexts := make([]string, len(batch))
		for i, p := range batch {
			batchTexts[i] = p.text
		}

		vectors, err := e.fetchWithRetry(ctx, batchTexts)
		if err != nil {
			return nil, err
		}

		if len(vectors) < len(batch) {
			e.logger.Warn(embedderModule, "Provider returned fewer vectors than requested", map[string]interface{}{
				"requested": len(batch),
				"received":  len(vectors),
			})
		}

		for i, vector := range vectors {
			if i >= len(batch) {
				break
			}
			p := batch[i]
			if err := e.cache.Put(ctx, p.key, vector); err != nil {
				e.logger.Warn(embedderModule, "Failed to cache embedding", map[string]interface{}{
					"key":   p.key,
					"error": err,
				})
			}
			for _, pos := range p.positions {
				results[pos] = vector
				filled[pos] = true
			}
		}
	}

	out := make([][]float32, 0, len(texts))
	for i, vector := range results {
		if filled[i] {
			out = append(out, vector)
		}
	}
	return out, nil
}

func (e *BatchedEmbedder) fetchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	schedule := &backoff.ExponentialBackOff{
		InitialInterval:     e.cfg.BatchDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         e.cfg.BatchDelay << e.cfg.MaxAttempts,
	}
	schedule.Reset()

	for attempt := 1; ; attempt++ {
		vectors, err := e.provider.EmbedBatch(ctx, texts)
		e.metrics.RecordProviderCall(err)
		if err == nil {
			return vectors, nil
		}

		if !IsRateLimit(err) {
			e.logger.Error(embedderModule, "Embedding batch failed", map[string]interface{}{
				"provider": e.provider.Name(),
				"error":    err,
			})
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}

		if attempt >= e.cfg.MaxAttempts {
			e.logger.Error(embedderModule, "Rate limit retries exhausted", map[string]interface{}{
				"provider": e.provider.Name(),
				"attempts": attempt,
				"error":    err,
			})
			return nil, fmt.Errorf("embedding batch rate limited after %d attempts: %w", attempt, err)
		}

		wait := schedule.NextBackOff()
		e.metrics.RecordRateLimitRetry()
		e.logger.Warn(embedderModule, "Rate limited, backing off", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
		})
		if err := e.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}
