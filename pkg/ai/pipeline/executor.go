package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"prime-research/internal/metrics"
	"prime-research/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const pipelineModule = "PIPELINE"

// Stage names, in execution order.
const (
	StageOrchestrate       = "orchestrate"
	StageResearch          = "research"
	StageSummarize         = "summarize"
	StageAssessCredibility = "assess_credibility"
	StageLearningContent   = "generate_learning_content"
	StageKnowledgeGraph    = "build_knowledge_graph"
	StageRecordProgress    = "record_progress"
)

var (
	// ErrMissingTopic aborts a run that has no topic.
	ErrMissingTopic = errors.New("topic is required")
	// ErrSequenceConsumed is yielded when a step sequence is ranged over twice.
	ErrSequenceConsumed = errors.New("pipeline step sequence already consumed")
	// ErrSessionReassigned is returned when a stage changes an already assigned session id.
	ErrSessionReassigned = errors.New("session id changed after assignment")
)

// StageError wraps an error that escaped a stage and aborted the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageFunc transforms the state. A returned error aborts the run, so stages
// should degrade their own output for anything recoverable.
type StageFunc func(ctx context.Context, state State) (State, error)

type Stage struct {
	Name string
	Run  StageFunc
}

// Step is one completed stage and the state it produced.
type Step struct {
	Stage string
	State State
}

// Executor runs a fixed, ordered list of stages.
type Executor struct {
	stages  []Stage
	logger  logger.ILogger
	metrics *metrics.Collector
}

func NewExecutor(stages []Stage, log logger.ILogger, m *metrics.Collector) *Executor {
	return &Executor{
		stages:  append([]Stage(nil), stages...),
		logger:  log,
		metrics: m,
	}
}

// StageNames lists the stages in execution order.
func (e *Executor) StageNames() []string {
	names := make([]string, len(e.stages))
	for i, s := range e.stages {
		names[i] = s.Name
	}
	return names
}

// Stream returns a sequence yielding one Step per completed stage. If a stage
// fails, the sequence yields the failure (wrapped in a StageError) and ends.
// The sequence runs once: ranging over it again yields ErrSequenceConsumed.
func (e *Executor) Stream(ctx context.Context, initial State) iter.Seq2[Step, error] {
	var started atomic.Bool

	return func(yield func(Step, error) bool) {
		if !started.CompareAndSwap(false, true) {
			yield(Step{}, ErrSequenceConsumed)
			return
		}

		state := initial
		runStart := time.Now()
		e.logger.Info(pipelineModule, "Pipeline started", map[string]interface{}{
			"topic":  state.Topic,
			"depth":  state.Depth,
			"stages": len(e.stages),
		})

		for _, stage := range e.stages {
			next, err := e.runStage(ctx, stage, state)
			if err != nil {
				e.metrics.RecordRun(err)
				e.logger.Error(pipelineModule, "Pipeline aborted", map[string]interface{}{
					"stage": stage.Name,
					"error": err,
				})
				yield(Step{Stage: stage.Name, State: state}, err)
				return
			}
			state = next
			if !yield(Step{Stage: stage.Name, State: state}, nil) {
				return
			}
		}

		e.metrics.RecordRun(nil)
		e.logger.Info(pipelineModule, "Pipeline completed", map[string]interface{}{
			"session_id": state.SessionID,
			"duration":   time.Since(runStart).String(),
		})
	}
}

// Run executes every stage and returns the final state. On failure it returns
// the state as of the last completed stage together with a *StageError.
func (e *Executor) Run(ctx context.Context, initial State) (State, error) {
	state := initial
	for step, err := range e.Stream(ctx, initial) {
		state = step.State
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func (e *Executor) runStage(ctx context.Context, stage Stage, state State) (State, error) {
	ctx, span := otel.Tracer("prime-research/pipeline").Start(ctx, "stage."+stage.Name)
	span.SetAttributes(attribute.String("pipeline.stage", stage.Name))
	defer span.End()

	e.logger.Debug(pipelineModule, "Stage started", map[string]interface{}{"stage": stage.Name})
	start := time.Now()

	next, err := stage.Run(ctx, state)
	elapsed := time.Since(start)
	e.metrics.RecordStage(stage.Name, elapsed)

	if err == nil && state.SessionID != "" && next.SessionID != state.SessionID {
		err = fmt.Errorf("%w: %s -> %s", ErrSessionReassigned, state.SessionID, next.SessionID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, &StageError{Stage: stage.Name, Err: err}
	}

	e.logger.Info(pipelineModule, "Stage completed", map[string]interface{}{
		"stage":    stage.Name,
		"duration": elapsed.String(),
	})
	return next, nil
}
