package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"prime-research/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

const logModule = "CONTENT_CACHE"

// FileCache keeps entries in memory and snapshots them to a single JSON file
// on Flush. A missing or unreadable file starts an empty cache.
type FileCache struct {
	path   string
	items  *gocache.Cache
	logger logger.ILogger

	mu    sync.Mutex
	dirty bool
}

func NewFileCache(path string, log logger.ILogger) *FileCache {
	c := &FileCache{
		path:   path,
		items:  gocache.New(gocache.NoExpiration, 0),
		logger: log,
	}
	c.load()
	return c
}

func (c *FileCache) load() {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn(logModule, "Failed to read cache file, starting empty", map[string]interface{}{
				"path":  c.path,
				"error": err,
			})
		}
		return
	}

	var entries map[string][]float32
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn(logModule, "Cache file is corrupt, starting empty", map[string]interface{}{
			"path":  c.path,
			"error": err,
		})
		return
	}

	for key, vector := range entries {
		c.items.Set(key, vector, gocache.NoExpiration)
	}
	c.logger.Debug(logModule, "Loaded embedding cache", map[string]interface{}{
		"path":    c.path,
		"entries": len(entries),
	})
}

func (c *FileCache) Get(_ context.Context, key string) ([]float32, bool) {
	if x, found := c.items.Get(key); found {
		return x.([]float32), true
	}
	return nil, false
}

func (c *FileCache) Put(_ context.Context, key string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Set(key, vector, gocache.NoExpiration)
	c.dirty = true
	return nil
}

func (c *FileCache) Len() int {
	return c.items.ItemCount()
}

// Flush writes the whole cache to a temp file next to the target and renames
// it into place, so a crash never leaves a half-written cache behind.
func (c *FileCache) Flush(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	items := c.items.Items()
	entries := make(map[string][]float32, len(items))
	for key, item := range items {
		entries[key] = item.Object.([]float32)
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode embedding cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".embedding-cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.dirty = false
	return nil
}
