package implementation

import (
	"context"
	"os"
	"testing"

	"prime-research/internal/model"
	"prime-research/pkg/database"
	"prime-research/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real PostgreSQL with pgvector; skipped otherwise.
func TestChunkEmbeddingRepositoryPostgres(t *testing.T) {
	dsn := os.Getenv("PGVECTOR_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: PGVECTOR_TEST_DSN not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, true, model.VectorModels()...))

	ctx := context.Background()
	repo := NewChunkEmbeddingRepository(db, "test_"+uuid.NewString())
	t.Cleanup(func() { _ = repo.Drop(ctx) })

	records := []vectorindex.Record{
		{
			Document: vectorindex.Document{ID: "a", Content: "alpha", Metadata: map[string]interface{}{"source": "one"}},
			Vector:   []float32{1, 0, 0},
		},
		{
			Document: vectorindex.Document{ID: "b", Content: "beta", Metadata: map[string]interface{}{"source": "two"}},
			Vector:   []float32{0, 1, 0},
		},
	}
	require.NoError(t, repo.Upsert(ctx, records))

	t.Run("nearest first", func(t *testing.T) {
		results, err := repo.Query(ctx, []float32{0.9, 0.1, 0}, 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("metadata filter", func(t *testing.T) {
		results, err := repo.Query(ctx, []float32{1, 0, 0}, 5, map[string]interface{}{"source": "two"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "beta", results[0].Content)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		replaced := records[0]
		replaced.Content = "alpha v2"
		require.NoError(t, repo.Upsert(ctx, []vectorindex.Record{replaced}))

		results, err := repo.Query(ctx, []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "alpha v2", results[0].Content)
	})

	t.Run("drop empties the collection", func(t *testing.T) {
		require.NoError(t, repo.Drop(ctx))
		results, err := repo.Query(ctx, []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
