package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ChunkEmbedding rows are grouped by Collection so one table can hold several
// indexes. The vector column has no fixed dimension because the embedding
// provider is configurable.
type ChunkEmbedding struct {
	Id             string            `gorm:"type:text;primaryKey"`
	Collection     string            `gorm:"type:text;not null;index"`
	Content        string            `gorm:"type:text"`
	Metadata       datatypes.JSONMap `gorm:"column:metadata"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
