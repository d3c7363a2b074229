package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"prime-research/internal/dto"
	"prime-research/internal/pkg/logger"
	"prime-research/internal/repository/memory"
	"prime-research/pkg/ai/pipeline"

	"github.com/go-playground/validator/v10"
)

const researchModule = "RESEARCH_SERVICE"

// StepFunc observes each completed stage of a synchronous run.
type StepFunc func(step pipeline.Step, index, total int)

// IndexClearer is satisfied by *vectorindex.Index.
type IndexClearer interface {
	Clear(ctx context.Context)
}

type IResearchService interface {
	// Run executes the pipeline in the caller's goroutine.
	Run(ctx context.Context, in pipeline.Input, onStep StepFunc) (pipeline.State, error)
	// Start opens a session and runs the pipeline in the background,
	// returning the session id immediately.
	Start(ctx context.Context, in pipeline.Input) (string, error)
	GetRun(sessionId string) (*memory.RunRecord, bool)
	StageNames() []string
	// ClearIndex drops the vector collection, best effort. It refuses while
	// a run is in progress.
	ClearIndex(ctx context.Context) error
	// Wait blocks until any background run has finished.
	Wait()
}

// researchService allows one run at a time: the embedding cache and the
// knowledge store are not safe for concurrent runs.
type researchService struct {
	executor  *pipeline.Executor
	knowledge IKnowledgeService
	index     IndexClearer
	runs      *memory.RunRepository
	publisher IProgressPublisher
	logger    logger.ILogger
	validate  *validator.Validate

	mu         sync.Mutex
	background sync.WaitGroup
}

func NewResearchService(
	executor *pipeline.Executor,
	knowledge IKnowledgeService,
	index IndexClearer,
	runs *memory.RunRepository,
	publisher IProgressPublisher,
	logger logger.ILogger,
) IResearchService {
	return &researchService{
		executor:  executor,
		knowledge: knowledge,
		index:     index,
		runs:      runs,
		publisher: publisher,
		logger:    logger,
		validate:  validator.New(),
	}
}

func (s *researchService) StageNames() []string {
	return s.executor.StageNames()
}

func (s *researchService) Run(ctx context.Context, in pipeline.Input, onStep StepFunc) (pipeline.State, error) {
	if err := s.checkInput(in); err != nil {
		return pipeline.State{}, err
	}
	if !s.mu.TryLock() {
		return pipeline.State{}, ErrRunInProgress
	}
	defer s.mu.Unlock()

	return s.execute(ctx, in, onStep)
}

func (s *researchService) Start(ctx context.Context, in pipeline.Input) (string, error) {
	if err := s.checkInput(in); err != nil {
		return "", err
	}
	if !s.mu.TryLock() {
		return "", ErrRunInProgress
	}

	if in.SessionID == "" {
		id, err := s.knowledge.CreateSession(ctx, in.Topic, in.Depth)
		if err != nil {
			s.mu.Unlock()
			return "", err
		}
		in.SessionID = id
	}

	s.runs.Save(&memory.RunRecord{
		SessionId: in.SessionID,
		Status:    dto.RunStatusRunning,
		StartedAt: time.Now(),
		State:     pipeline.NewState(in),
	})

	runCtx := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer s.mu.Unlock()
		if _, err := s.execute(runCtx, in, nil); err != nil {
			s.logger.Error(researchModule, "Background research run failed", map[string]interface{}{
				"session_id": in.SessionID,
				"error":      err,
			})
		}
	}()

	return in.SessionID, nil
}

func (s *researchService) Wait() {
	s.background.Wait()
}

// execute must be called with mu held.
func (s *researchService) execute(ctx context.Context, in pipeline.Input, onStep StepFunc) (pipeline.State, error) {
	record := &memory.RunRecord{
		SessionId: in.SessionID,
		Status:    dto.RunStatusRunning,
		StartedAt: time.Now(),
		State:     pipeline.NewState(in),
	}
	total := len(s.executor.StageNames())

	s.logger.Info(researchModule, "Research run started", map[string]interface{}{
		"topic":      in.Topic,
		"depth":      in.Depth,
		"session_id": in.SessionID,
	})

	step := 0
	for st, err := range s.executor.Stream(ctx, record.State) {
		record.State = st.State
		if record.SessionId == "" {
			record.SessionId = st.State.SessionID
		}
		if err != nil {
			return record.State, s.finish(ctx, record, st.Stage, step, total, err)
		}

		step++
		record.Stage = st.Stage
		s.runs.Save(record)
		s.publish(ctx, dto.ProgressEvent{
			SessionId: record.SessionId,
			Stage:     st.Stage,
			Step:      step,
			Total:     total,
			Status:    dto.RunStatusRunning,
			Timestamp: time.Now(),
		})
		if onStep != nil {
			onStep(st, step, total)
		}
	}

	return record.State, s.finish(ctx, record, record.Stage, step, total, nil)
}

func (s *researchService) finish(ctx context.Context, record *memory.RunRecord, stage string, step, total int, runErr error) error {
	now := time.Now()
	record.FinishedAt = &now
	record.Stage = stage
	record.Status = dto.RunStatusCompleted
	event := dto.ProgressEvent{
		SessionId: record.SessionId,
		Stage:     stage,
		Step:      step,
		Total:     total,
		Status:    dto.RunStatusCompleted,
		Timestamp: now,
	}
	if runErr != nil {
		record.Status = dto.RunStatusFailed
		record.Error = runErr.Error()
		event.Status = dto.RunStatusFailed
		event.Error = runErr.Error()
	}

	s.runs.Save(record)
	s.publish(ctx, event)

	s.logger.Info(researchModule, "Research run finished", map[string]interface{}{
		"session_id": record.SessionId,
		"status":     record.Status,
		"duration":   now.Sub(record.StartedAt).String(),
	})
	return runErr
}

func (s *researchService) publish(ctx context.Context, event dto.ProgressEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(researchModule, "Failed to publish progress", map[string]interface{}{
			"session_id": event.SessionId,
			"error":      err,
		})
	}
}

func (s *researchService) GetRun(sessionId string) (*memory.RunRecord, bool) {
	return s.runs.Get(sessionId)
}

func (s *researchService) ClearIndex(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrRunInProgress
	}
	defer s.mu.Unlock()

	s.index.Clear(ctx)
	s.logger.Info(researchModule, "Vector index cleared", nil)
	return nil
}

func (s *researchService) checkInput(in pipeline.Input) error {
	if strings.TrimSpace(in.Topic) == "" {
		return pipeline.ErrMissingTopic
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid research input: %w", err)
	}
	return nil
}
