package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("prime")
	b := NewCollector("prime")

	a.RecordCache(2, 1)
	a.RecordProviderCall(nil)
	a.RecordProviderCall(errors.New("boom"))
	a.RecordStoreWrite("nodes", nil)
	a.RecordStage("research", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ProviderCalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.StoreWrites.WithLabelValues("nodes", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHits))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordCache(1, 1)
		c.RecordProviderCall(nil)
		c.RecordRateLimitRetry()
		c.RecordStage("orchestrate", time.Second)
		c.RecordRun(nil)
		c.RecordIndexBatch(nil)
		c.RecordStoreWrite("edges", nil)
	})
	assert.NotNil(t, c.Registry())
}
