package vectorindex

import (
	"context"
	"fmt"

	"prime-research/internal/metrics"
	"prime-research/internal/pkg/logger"

	"github.com/google/uuid"
)

const indexModule = "VECTOR_INDEX"

const DefaultBatchSize = 32

// Document is one text to index. An empty ID gets a fresh UUID on Add.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// Record is a Document paired with its embedding, as handed to a Store.
type Record struct {
	Document
	Vector []float32
}

// Result is a search hit. Score is cosine similarity, higher is closer.
type Result struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

// Embedder is satisfied by embedding.BatchedEmbedder. The returned slice may
// be shorter than texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists records for one collection.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	// Query returns at most k records ranked by similarity to vector,
	// restricted to those whose metadata equals every filter entry.
	Query(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]Result, error)
	Drop(ctx context.Context) error
}

// Index embeds documents and searches them by similarity. Every operation
// logs and degrades instead of failing: Add skips failed batches, Search
// returns no results, Clear is best effort.
type Index struct {
	embedder  Embedder
	store     Store
	batchSize int
	logger    logger.ILogger
	metrics   *metrics.Collector
}

func New(embedder Embedder, store Store, batchSize int, log logger.ILogger, m *metrics.Collector) *Index {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Index{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    log,
		metrics:   m,
	}
}

// Add indexes docs in batches and returns how many were stored.
func (i *Index) Add(ctx context.Context, docs []Document) int {
	if len(docs) == 0 {
		return 0
	}

	indexed := 0
	for start := 0; start < len(docs); start += i.batchSize {
		end := min(start+i.batchSize, len(docs))
		batch := docs[start:end]
		batchNo := start/i.batchSize + 1

		err := i.addBatch(ctx, batch)
		i.metrics.RecordIndexBatch(err)
		if err != nil {
			i.logger.Error(indexModule, "Failed to index batch", map[string]interface{}{
				"batch": batchNo,
				"size":  len(batch),
				"error": err,
			})
			continue
		}

		indexed += len(batch)
		i.logger.Info(indexModule, "Indexed batch", map[string]interface{}{
			"batch": batchNo,
			"size":  len(batch),
		})
	}
	return indexed
}

func (i *Index) addBatch(ctx context.Context, batch []Document) error {
	texts := make([]string, len(batch))
	for j, doc := range batch {
		texts[j] = doc.Content
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	// dropped positions cannot be matched back to their documents
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch))
	}

	records := make([]Record, len(batch))
	for j, doc := range batch {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		records[j] = Record{Document: doc, Vector: vectors[j]}
	}
	return i.store.Upsert(ctx, records)
}

// Search returns up to k documents most similar to query. filter may be nil.
// Any failure is logged and reported as no results.
func (i *Index) Search(ctx context.Context, query string, k int, filter map[string]interface{}) []Result {
	if k <= 0 {
		return nil
	}

	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		i.logger.Error(indexModule, "Failed to embed search query", map[string]interface{}{
			"query": query,
			"error": err,
		})
		return nil
	}
	if len(vectors) == 0 {
		i.logger.Warn(indexModule, "No embedding returned for search query", map[string]interface{}{
			"query": query,
		})
		return nil
	}

	results, err := i.store.Query(ctx, vectors[0], k, filter)
	if err != nil {
		i.logger.Error(indexModule, "Vector search failed", map[string]interface{}{
			"query":  query,
			"filter": filter,
			"error":  err,
		})
		return nil
	}
	return results
}

// Clear drops the collection. Failures are logged only.
func (i *Index) Clear(ctx context.Context) {
	if err := i.store.Drop(ctx); err != nil {
		i.logger.Error(indexModule, "Failed to clear vector index", map[string]interface{}{
			"error": err,
		})
		return
	}
	i.logger.Info(indexModule, "Vector index cleared", nil)
}
