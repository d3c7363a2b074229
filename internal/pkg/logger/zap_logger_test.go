package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsNewestFirstAndFiltered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prime.log")
	l := NewIsolatedLogger(path)

	l.Info("PIPELINE", "first", nil)
	l.Warn("CREDIBILITY", "degraded", map[string]interface{}{"error": errors.New("boom")})
	l.Info("PIPELINE", "second", map[string]interface{}{"stage": "research"})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "second", all[0].Message)
	assert.Equal(t, "first", all[2].Message)

	warns, err := l.GetLogs("WARN", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "CREDIBILITY", warns[0].Module)
	assert.Equal(t, "boom", warns[0].Details["error"])

	found, err := l.GetLogById(warns[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "degraded", found.Message)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "absent.log"))

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
