package implementation

import (
	"context"

	"prime-research/internal/mapper"
	"prime-research/internal/model"
	"prime-research/internal/repository/contract"
	"prime-research/pkg/vectorindex"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChunkEmbeddingRepositoryImpl struct {
	db         *gorm.DB
	collection string
	mapper     *mapper.ChunkEmbeddingMapper
}

// NewChunkEmbeddingRepository scopes every operation to one collection.
// It needs PostgreSQL with the vector extension.
func NewChunkEmbeddingRepository(db *gorm.DB, collection string) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:         db,
		collection: collection,
		mapper:     mapper.NewChunkEmbeddingMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) Upsert(ctx context.Context, records []vectorindex.Record) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(records))
	for i, rec := range records {
		models[i] = r.mapper.ToModel(r.collection, rec)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"collection", "content", "metadata", "embedding_value"}),
		}).
		Create(models).Error
}

func (r *ChunkEmbeddingRepositoryImpl) Query(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]vectorindex.Result, error) {
	if k <= 0 {
		return nil, nil
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type row struct {
		model.ChunkEmbedding
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)

	query := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("chunk_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("collection = ?", r.collection)
	for key, value := range filter {
		query = query.Where(datatypes.JSONQuery("metadata").Equals(value, key))
	}

	err := query.
		Order("similarity DESC").
		Order("created_at ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]vectorindex.Result, len(rows))
	for i := range rows {
		results[i] = r.mapper.ToResult(&rows[i].ChunkEmbedding, rows[i].Similarity)
	}
	return results, nil
}

func (r *ChunkEmbeddingRepositoryImpl) Drop(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("collection = ?", r.collection).
		Delete(&model.ChunkEmbedding{}).Error
}
