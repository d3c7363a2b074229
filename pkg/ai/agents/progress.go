package agents

import (
	"context"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
)

const progressModule = "PROGRESS"

// ProgressRecorder stores the run summary on its session.
type ProgressRecorder struct {
	store  KnowledgeStore
	logger logger.ILogger
}

func NewProgressRecorder(store KnowledgeStore, log logger.ILogger) *ProgressRecorder {
	return &ProgressRecorder{store: store, logger: log}
}

func (p *ProgressRecorder) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	if state.SessionID == "" || state.Summary == "" {
		p.logger.Debug(progressModule, "Nothing to record", map[string]interface{}{"session_id": state.SessionID})
		return state, nil
	}

	if err := p.store.UpdateSessionSummary(ctx, state.SessionID, state.Summary); err != nil {
		p.logger.Warn(progressModule, "Failed to record session summary", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err,
		})
		return state, nil
	}

	p.logger.Info(progressModule, "Session summary recorded", map[string]interface{}{"session_id": state.SessionID})
	return state, nil
}
