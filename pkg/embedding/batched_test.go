package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/embedding/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls    [][]string
	failures []error // consumed one per call before succeeding
	truncate int     // when > 0, answer with at most this many vectors
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, vectorFor(text))
	}
	if f.truncate > 0 && len(out) > f.truncate {
		out = out[:f.truncate]
	}
	return out, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func vectorFor(text string) []float32 {
	var first float32
	if len(text) > 0 {
		first = float32(text[0])
	}
	return []float32{float32(len(text)), first}
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestEmbedder(t *testing.T, p Provider, cfg BatchConfig) (*BatchedEmbedder, *recordingSleeper) {
	t.Helper()
	sleeper := &recordingSleeper{}
	c := cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json"), logger.NewNopLogger())
	return NewBatchedEmbedder(p, c, cfg, logger.NewNopLogger(), WithSleeper(sleeper.Sleep)), sleeper
}

func TestEmbedServesRepeatsFromCache(t *testing.T) {
	provider := &fakeProvider{}
	e, _ := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, BatchDelay: time.Second, MaxAttempts: 3})
	ctx := context.Background()

	first, err := e.Embed(ctx, []string{"same text"})
	require.NoError(t, err)
	second, err := e.Embed(ctx, []string{"same text"})
	require.NoError(t, err)

	assert.Len(t, provider.calls, 1)
	assert.Equal(t, first, second)
}

func TestEmbedPreservesOrderWithMixedCacheState(t *testing.T) {
	provider := &fakeProvider{}
	e, _ := newTestEmbedder(t, provider, BatchConfig{BatchSize: 2, MaxAttempts: 3})
	ctx := context.Background()

	_, err := e.Embed(ctx, []string{"bb"})
	require.NoError(t, err)

	got, err := e.Embed(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{vectorFor("a"), vectorFor("bb"), vectorFor("ccc")}, got)
	require.Len(t, provider.calls, 2)
	assert.Equal(t, []string{"a", "ccc"}, provider.calls[1])
}

func TestEmbedFetchesDuplicateTextOnce(t *testing.T) {
	provider := &fakeProvider{}
	e, _ := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, MaxAttempts: 3})

	got, err := e.Embed(context.Background(), []string{"x", "x", "y"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{vectorFor("x"), vectorFor("x"), vectorFor("y")}, got)
	assert.Len(t, provider.calls, 2)
}

func TestEmbedPacesBatches(t *testing.T) {
	provider := &fakeProvider{}
	e, sleeper := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, BatchDelay: 3 * time.Second, MaxAttempts: 3})

	_, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Len(t, provider.calls, 3)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, sleeper.waits)
}

func TestEmbedBacksOffOnRateLimit(t *testing.T) {
	base := 3 * time.Second
	provider := &fakeProvider{failures: []error{
		StatusError("fake", 429, []byte("slow down")),
		errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)"),
	}}
	e, sleeper := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, BatchDelay: base, MaxAttempts: 3})

	got, err := e.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{vectorFor("a")}, got)
	assert.Len(t, provider.calls, 3)
	assert.Equal(t, []time.Duration{base, 2 * base}, sleeper.waits)

	var total time.Duration
	for _, w := range sleeper.waits {
		total += w
	}
	assert.Equal(t, base+2*base, total)
}

func TestEmbedGivesUpAfterMaxAttempts(t *testing.T) {
	provider := &fakeProvider{failures: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	e, sleeper := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, BatchDelay: time.Second, MaxAttempts: 3})

	_, err := e.Embed(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, provider.calls, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
}

func TestEmbedFailsFastOnOtherErrors(t *testing.T) {
	provider := &fakeProvider{failures: []error{errors.New("invalid api key")}}
	e, sleeper := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, BatchDelay: time.Second, MaxAttempts: 3})

	_, err := e.Embed(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.False(t, IsRateLimit(err))
	assert.Len(t, provider.calls, 1)
	assert.Empty(t, sleeper.waits)
}

func TestEmbedKeepsEarlierBatchesCachedAfterFailure(t *testing.T) {
	provider := &fakeProvider{failures: []error{nil, errors.New("boom")}}
	e, _ := newTestEmbedder(t, provider, BatchConfig{BatchSize: 1, MaxAttempts: 1})
	ctx := context.Background()

	_, err := e.Embed(ctx, []string{"a", "b"})
	require.Error(t, err)

	got, err := e.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{vectorFor("a")}, got)
	assert.Len(t, provider.calls, 2)
}

func TestEmbedDropsUnansweredPositions(t *testing.T) {
	provider := &fakeProvider{truncate: 1}
	e, _ := newTestEmbedder(t, provider, BatchConfig{BatchSize: 2, MaxAttempts: 1})

	got, err := e.Embed(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{vectorFor("a")}, got)
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrRateLimited, want: true},
		{name: "status 429", err: StatusError("jina", 429, nil), want: true},
		{name: "status 500", err: StatusError("jina", 500, nil), want: false},
		{name: "quota text", err: errors.New("Quota exceeded for metric"), want: true},
		{name: "plain failure", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}
