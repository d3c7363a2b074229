package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// ContentCache maps a text fingerprint to a previously computed embedding.
// Entries are never evicted.
type ContentCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Put(ctx context.Context, key string, vector []float32) error
	// Flush persists pending writes. Backends that write through may no-op.
	Flush(ctx context.Context) error
}

// Fingerprint is the cache key for a text: hex SHA-256 of its UTF-8 bytes.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
