package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"prime-research/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("hello "))
	assert.Len(t, Fingerprint(""), 64)
}

func TestFileCacheSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	first := NewFileCache(path, logger.NewNopLogger())
	require.NoError(t, first.Put(ctx, Fingerprint("a"), []float32{1, 2}))
	require.NoError(t, first.Flush(ctx))

	second := NewFileCache(path, logger.NewNopLogger())
	got, ok := second.Get(ctx, Fingerprint("a"))
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)

	_, ok = second.Get(ctx, Fingerprint("b"))
	assert.False(t, ok)
}

func TestFileCacheFlushWithoutWritesLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewFileCache(path, logger.NewNopLogger())

	require.NoError(t, c.Flush(context.Background()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileCacheCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewFileCache(path, logger.NewNopLogger())
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Put(context.Background(), "k", []float32{0.5}))
	require.NoError(t, c.Flush(context.Background()))

	reloaded := NewFileCache(path, logger.NewNopLogger())
	assert.Equal(t, 1, reloaded.Len())
}
