package pipeline

import (
	"context"
	"errors"
	"testing"

	"prime-research/internal/metrics"
	"prime-research/internal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordStage(name string, trace *[]string) Stage {
	return Stage{Name: name, Run: func(_ context.Context, s State) (State, error) {
		*trace = append(*trace, name)
		s.Notes[name] = "done"
		return s, nil
	}}
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	var trace []string
	names := []string{
		StageOrchestrate, StageResearch, StageSummarize, StageAssessCredibility,
		StageLearningContent, StageKnowledgeGraph, StageRecordProgress,
	}
	stages := make([]Stage, 0, len(names))
	for _, n := range names {
		stages = append(stages, recordStage(n, &trace))
	}

	m := metrics.NewCollector("test")
	exec := NewExecutor(stages, logger.NewNopLogger(), m)

	final, err := exec.Run(context.Background(), NewState(Input{Topic: "tides"}))
	require.NoError(t, err)
	assert.Equal(t, names, trace)
	assert.Equal(t, names, exec.StageNames())
	assert.Len(t, final.Notes, len(names))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("success")))
}

func TestStreamYieldsEachStep(t *testing.T) {
	var trace []string
	exec := NewExecutor([]Stage{recordStage("a", &trace), recordStage("b", &trace)}, logger.NewNopLogger(), nil)

	var steps []string
	for step, err := range exec.Stream(context.Background(), NewState(Input{Topic: "x"})) {
		require.NoError(t, err)
		steps = append(steps, step.Stage)
		assert.Equal(t, "done", step.State.Notes[step.Stage])
	}
	assert.Equal(t, []string{"a", "b"}, steps)
}

func TestStreamStopsWhenConsumerBreaks(t *testing.T) {
	var trace []string
	exec := NewExecutor([]Stage{recordStage("a", &trace), recordStage("b", &trace)}, logger.NewNopLogger(), nil)

	for range exec.Stream(context.Background(), NewState(Input{Topic: "x"})) {
		break
	}
	assert.Equal(t, []string{"a"}, trace)
}

func TestStreamIsSingleUse(t *testing.T) {
	var trace []string
	exec := NewExecutor([]Stage{recordStage("a", &trace)}, logger.NewNopLogger(), nil)
	seq := exec.Stream(context.Background(), NewState(Input{Topic: "x"}))

	for _, err := range seq {
		require.NoError(t, err)
	}

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrSequenceConsumed)
	assert.Equal(t, []string{"a"}, trace)
}

func TestRunAbortsOnStageError(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	stages := []Stage{
		recordStage("a", &trace),
		{Name: "b", Run: func(_ context.Context, s State) (State, error) {
			s.Summary = "partial"
			return s, boom
		}},
		recordStage("c", &trace),
	}
	m := metrics.NewCollector("test")
	exec := NewExecutor(stages, logger.NewNopLogger(), m)

	final, err := exec.Run(context.Background(), NewState(Input{Topic: "x"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "b", stageErr.Stage)

	assert.Equal(t, []string{"a"}, trace)
	assert.Equal(t, "done", final.Notes["a"])
	assert.Empty(t, final.Summary, "failed stage output must not leak")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("error")))
}

func TestSessionIDCannotBeReassigned(t *testing.T) {
	stages := []Stage{
		{Name: "assign", Run: func(_ context.Context, s State) (State, error) {
			s.SessionID = "s-1"
			return s, nil
		}},
		{Name: "reassign", Run: func(_ context.Context, s State) (State, error) {
			s.SessionID = "s-2"
			return s, nil
		}},
	}
	exec := NewExecutor(stages, logger.NewNopLogger(), nil)

	final, err := exec.Run(context.Background(), NewState(Input{Topic: "x"}))
	assert.ErrorIs(t, err, ErrSessionReassigned)
	assert.Equal(t, "s-1", final.SessionID)
}

func TestNewStateHasEmptyOutputs(t *testing.T) {
	s := NewState(Input{Topic: "t", Depth: 2})

	assert.NotNil(t, s.Documents)
	assert.NotNil(t, s.Chunks)
	assert.NotNil(t, s.Notes)
	assert.NotNil(t, s.Credibility)
	assert.NotNil(t, s.Quiz)
	assert.NotNil(t, s.Graph.Nodes)
	assert.NotNil(t, s.Graph.Edges)
	assert.Empty(t, s.Summary)
	assert.Empty(t, s.SessionID)
}
