package model

// ResearchModels lists the relational tables in migration order.
func ResearchModels() []interface{} {
	return []interface{}{
		&Session{},
		&GraphNode{},
		&GraphEdge{},
		&QuizResult{},
	}
}

// VectorModels lists the tables the pgvector backend needs.
func VectorModels() []interface{} {
	return []interface{}{
		&ChunkEmbedding{},
	}
}
