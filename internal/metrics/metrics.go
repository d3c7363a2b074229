package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics for a research process. Each
// collector owns its registry, so tests can build as many as they like.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ProviderCalls    *prometheus.CounterVec
	RateLimitRetries prometheus.Counter

	StageDuration *prometheus.HistogramVec
	PipelineRuns  *prometheus.CounterVec

	IndexBatches *prometheus.CounterVec
	StoreWrites  *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_hits_total",
			Help:      "Texts served from the embedding cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_misses_total",
			Help:      "Texts that had to be sent to the embedding provider",
		}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_provider_calls_total",
			Help:      "Embedding provider batch calls by outcome",
		}, []string{"status"}),
		RateLimitRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_rate_limit_retries_total",
			Help:      "Batch retries caused by provider rate limiting",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by outcome",
		}, []string{"status"}),
		IndexBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_index_batches_total",
			Help:      "Vector index add batches by outcome",
		}, []string{"status"}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_store_writes_total",
			Help:      "Knowledge store item writes by table and outcome",
		}, []string{"table", "status"}),
	}

	registry.MustRegister(
		c.CacheHits,
		c.CacheMisses,
		c.ProviderCalls,
		c.RateLimitRetries,
		c.StageDuration,
		c.PipelineRuns,
		c.IndexBatches,
		c.StoreWrites,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

func (c *Collector) RecordCache(hits, misses int) {
	if c == nil {
		return
	}
	c.CacheHits.Add(float64(hits))
	c.CacheMisses.Add(float64(misses))
}

func (c *Collector) RecordProviderCall(err error) {
	if c == nil {
		return
	}
	c.ProviderCalls.WithLabelValues(status(err)).Inc()
}

func (c *Collector) RecordRateLimitRetry() {
	if c == nil {
		return
	}
	c.RateLimitRetries.Inc()
}

func (c *Collector) RecordStage(stage string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (c *Collector) RecordRun(err error) {
	if c == nil {
		return
	}
	c.PipelineRuns.WithLabelValues(status(err)).Inc()
}

func (c *Collector) RecordIndexBatch(err error) {
	if c == nil {
		return
	}
	c.IndexBatches.WithLabelValues(status(err)).Inc()
}

func (c *Collector) RecordStoreWrite(table string, err error) {
	if c == nil {
		return
	}
	c.StoreWrites.WithLabelValues(table, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
