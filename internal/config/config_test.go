package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EMBED_BATCH_SIZE", "")
	t.Setenv("EMBED_BATCH_SLEEP", "")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "")

	cfg := Load()

	assert.Equal(t, 1, cfg.Embedding.BatchSize)
	assert.Equal(t, 3*time.Second, cfg.Embedding.BatchDelay)
	assert.Equal(t, 3, cfg.Embedding.MaxAttempts)
	assert.Equal(t, 32, cfg.Vector.BatchSize)
	assert.Equal(t, 1000, cfg.Research.ChunkSize)
	assert.Equal(t, 100, cfg.Research.ChunkOverlap)
	assert.Equal(t, 2*time.Second, cfg.Research.CredibilityDelay)
	assert.Zero(t, cfg.Ai.MaxOutputTokens)
}

func TestGetEnvAsSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "plain seconds", value: "1.5", want: 1500 * time.Millisecond},
		{name: "go duration", value: "250ms", want: 250 * time.Millisecond},
		{name: "garbage falls back", value: "soon", want: time.Minute},
		{name: "empty falls back", value: "", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PRIME_TEST_DELAY", tt.value)
			assert.Equal(t, tt.want, getEnvAsSeconds("PRIME_TEST_DELAY", time.Minute))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		t.Setenv("GEMINI_API_KEY", "key")
		cfg := Load()
		cfg.App.Environment = "test"
		cfg.Keys.GoogleGemini = "key"
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing gemini key is fatal", func(t *testing.T) {
		cfg := valid()
		cfg.Keys.GoogleGemini = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingCredential)
	})

	t.Run("ollama only needs no key", func(t *testing.T) {
		cfg := valid()
		cfg.Keys.GoogleGemini = ""
		cfg.Ai.LLMProvider = "ollama"
		cfg.Ai.EmbeddingProvider = "ollama"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("overlap must be smaller than chunk size", func(t *testing.T) {
		cfg := valid()
		cfg.Research.ChunkOverlap = cfg.Research.ChunkSize
		assert.Error(t, cfg.Validate())
	})

	t.Run("pgvector requires postgres", func(t *testing.T) {
		cfg := valid()
		cfg.Vector.Backend = "pgvector"
		assert.Error(t, cfg.Validate())
	})
}
