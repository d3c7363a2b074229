package contract

import (
	"context"

	"prime-research/pkg/vectorindex"
)

// ChunkEmbeddingRepository is the persistent vectorindex.Store.
type ChunkEmbeddingRepository interface {
	Upsert(ctx context.Context, records []vectorindex.Record) error
	Query(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]vectorindex.Result, error)
	Drop(ctx context.Context) error
}
