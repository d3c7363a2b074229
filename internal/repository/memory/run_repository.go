package memory

import (
	"time"

	"prime-research/pkg/ai/pipeline"

	"github.com/patrickmn/go-cache"
)

// RunRecord is the latest known state of one pipeline run.
type RunRecord struct {
	SessionId  string
	Status     string
	Stage      string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
	State      pipeline.State
}

// RunRepository keeps recent run states in memory for the UI. Entries
// expire; the knowledge store is the durable record.
type RunRepository struct {
	cache *cache.Cache
}

func NewRunRepository(ttl time.Duration) *RunRepository {
	// purge expired runs every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &RunRepository{
		cache: c,
	}
}

func (r *RunRepository) Save(run *RunRecord) {
	if run.SessionId == "" {
		return
	}
	copied := *run
	r.cache.Set(run.SessionId, &copied, cache.DefaultExpiration)
}

func (r *RunRepository) Get(sessionId string) (*RunRecord, bool) {
	if x, found := r.cache.Get(sessionId); found {
		copied := *x.(*RunRecord)
		return &copied, true
	}
	return nil, false
}

func (r *RunRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
