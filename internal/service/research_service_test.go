package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prime-research/internal/dto"
	"prime-research/internal/pkg/logger"
	"prime-research/internal/repository/memory"
	"prime-research/pkg/ai/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionOnlyKnowledge implements CreateSession; every other method panics
// through the nil embedded interface.
type sessionOnlyKnowledge struct {
	IKnowledgeService
	created int
}

func (k *sessionOnlyKnowledge) CreateSession(context.Context, string, int) (string, error) {
	k.created++
	return "pre-created", nil
}

type countingClearer struct{ calls int }

func (c *countingClearer) Clear(context.Context) { c.calls++ }

func assignSession(id string) pipeline.Stage {
	return pipeline.Stage{Name: pipeline.StageOrchestrate, Run: func(_ context.Context, s pipeline.State) (pipeline.State, error) {
		if s.SessionID == "" {
			s.SessionID = id
		}
		return s, nil
	}}
}

func summarize(text string) pipeline.Stage {
	return pipeline.Stage{Name: pipeline.StageSummarize, Run: func(_ context.Context, s pipeline.State) (pipeline.State, error) {
		s.Summary = text
		return s, nil
	}}
}

func newTestResearchService(stages []pipeline.Stage) (IResearchService, IProgressPublisher, *sessionOnlyKnowledge, *countingClearer) {
	log := logger.NewNopLogger()
	knowledge := &sessionOnlyKnowledge{}
	clearer := &countingClearer{}
	publisher := NewProgressPublisher(gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{}), log)
	svc := NewResearchService(
		pipeline.NewExecutor(stages, log, nil),
		knowledge,
		clearer,
		memory.NewRunRepository(time.Hour),
		publisher,
		log,
	)
	return svc, publisher, knowledge, clearer
}

func TestResearchServiceRun(t *testing.T) {
	svc, _, knowledge, _ := newTestResearchService([]pipeline.Stage{assignSession("s-1"), summarize("done")})

	var seen []string
	state, err := svc.Run(context.Background(), pipeline.Input{Topic: "tides"}, func(step pipeline.Step, index, total int) {
		seen = append(seen, step.Stage)
		assert.Equal(t, 2, total)
		assert.Equal(t, len(seen), index)
	})
	require.NoError(t, err)
	assert.Equal(t, "done", state.Summary)
	assert.Equal(t, []string{pipeline.StageOrchestrate, pipeline.StageSummarize}, seen)
	assert.Zero(t, knowledge.created)

	run, ok := svc.GetRun("s-1")
	require.True(t, ok)
	assert.Equal(t, dto.RunStatusCompleted, run.Status)
	assert.Equal(t, pipeline.StageSummarize, run.Stage)
	assert.NotNil(t, run.FinishedAt)
}

func TestResearchServiceRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestResearchService(nil)

	_, err := svc.Run(context.Background(), pipeline.Input{Topic: "  "}, nil)
	assert.ErrorIs(t, err, pipeline.ErrMissingTopic)

	_, err = svc.Start(context.Background(), pipeline.Input{Topic: "t", Depth: 11})
	assert.Error(t, err)

	_, err = svc.Run(context.Background(), pipeline.Input{Topic: "t", URLs: []string{"not a url"}}, nil)
	assert.Error(t, err)
}

func TestResearchServiceStartPublishesProgress(t *testing.T) {
	svc, publisher, knowledge, _ := newTestResearchService([]pipeline.Stage{assignSession("ignored"), summarize("bg")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := publisher.Subscribe(ctx)
	require.NoError(t, err)

	id, err := svc.Start(ctx, pipeline.Input{Topic: "tides"})
	require.NoError(t, err)
	assert.Equal(t, "pre-created", id)
	assert.Equal(t, 1, knowledge.created)

	var got []dto.ProgressEvent
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case e := <-events:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("received %d of 3 progress events", len(got))
		}
	}
	svc.Wait()

	assert.Equal(t, dto.RunStatusCompleted, got[2].Status)
	for _, e := range got {
		assert.Equal(t, "pre-created", e.SessionId)
		assert.Equal(t, 2, e.Total)
	}

	run, ok := svc.GetRun(id)
	require.True(t, ok)
	assert.Equal(t, "bg", run.State.Summary)
	assert.Equal(t, "pre-created", run.State.SessionID)
}

func TestResearchServiceSerializesRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := pipeline.Stage{Name: "block", Run: func(_ context.Context, s pipeline.State) (pipeline.State, error) {
		close(started)
		<-release
		return s, nil
	}}
	svc, _, _, clearer := newTestResearchService([]pipeline.Stage{blocking})

	_, err := svc.Start(context.Background(), pipeline.Input{Topic: "first"})
	require.NoError(t, err)
	<-started

	_, err = svc.Start(context.Background(), pipeline.Input{Topic: "second"})
	assert.ErrorIs(t, err, ErrRunInProgress)
	_, err = svc.Run(context.Background(), pipeline.Input{Topic: "third"}, nil)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.ErrorIs(t, svc.ClearIndex(context.Background()), ErrRunInProgress)

	close(release)
	svc.Wait()

	require.NoError(t, svc.ClearIndex(context.Background()))
	assert.Equal(t, 1, clearer.calls)
}

func TestResearchServiceRecordsFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := pipeline.Stage{Name: pipeline.StageResearch, Run: func(_ context.Context, s pipeline.State) (pipeline.State, error) {
		return s, boom
	}}
	svc, _, _, _ := newTestResearchService([]pipeline.Stage{assignSession("s-9"), failing})

	_, err := svc.Run(context.Background(), pipeline.Input{Topic: "t"}, nil)
	require.ErrorIs(t, err, boom)

	run, ok := svc.GetRun("s-9")
	require.True(t, ok)
	assert.Equal(t, dto.RunStatusFailed, run.Status)
	assert.Equal(t, pipeline.StageResearch, run.Stage)
	assert.Contains(t, run.Error, "boom")
}
