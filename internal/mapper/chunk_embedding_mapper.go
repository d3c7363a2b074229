package mapper

import (
	"prime-research/internal/model"
	"prime-research/pkg/vectorindex"

	"github.com/pgvector/pgvector-go"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToModel(collection string, r vectorindex.Record) *model.ChunkEmbedding {
	return &model.ChunkEmbedding{
		Id:             r.ID,
		Collection:     collection,
		Content:        r.Content,
		Metadata:       r.Metadata,
		EmbeddingValue: pgvector.NewVector(r.Vector),
	}
}

func (m *ChunkEmbeddingMapper) ToResult(c *model.ChunkEmbedding, similarity float64) vectorindex.Result {
	return vectorindex.Result{
		ID:       c.Id,
		Content:  c.Content,
		Metadata: c.Metadata,
		Score:    similarity,
	}
}
