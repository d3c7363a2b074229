package embedding

import "context"

// Provider defines the interface for generating text embeddings.
// EmbedBatch returns one vector per input text, in input order. A provider may
// return fewer vectors than requested; callers treat the missing tail as not
// embedded.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}
