package agents

import (
	"context"
	"strings"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
)

const orchestratorModule = "ORCHESTRATOR"

// Orchestrator validates the input and opens a session unless the caller
// already assigned one.
type Orchestrator struct {
	store  KnowledgeStore
	logger logger.ILogger
}

func NewOrchestrator(store KnowledgeStore, log logger.ILogger) *Orchestrator {
	return &Orchestrator{store: store, logger: log}
}

func (o *Orchestrator) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	state.Topic = strings.TrimSpace(state.Topic)
	if state.Topic == "" {
		return state, pipeline.ErrMissingTopic
	}
	if state.Depth < 0 {
		o.logger.Warn(orchestratorModule, "Negative depth clamped to 0", map[string]interface{}{"depth": state.Depth})
		state.Depth = 0
	}

	o.logger.Info(orchestratorModule, "Orchestrator started", map[string]interface{}{
		"topic": state.Topic,
		"depth": state.Depth,
		"urls":  len(state.URLs),
		"files": len(state.Files),
	})

	if state.SessionID != "" {
		return state, nil
	}

	sessionID, err := o.store.CreateSession(ctx, state.Topic, state.Depth)
	if err != nil {
		o.logger.Error(orchestratorModule, "Failed to create session, continuing without one", map[string]interface{}{
			"error": err,
		})
		return state, nil
	}
	state.SessionID = sessionID
	return state, nil
}
