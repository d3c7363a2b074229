package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prime-research/internal/dto"
	"prime-research/internal/entity"
	"prime-research/internal/pkg/serverutils"
	"prime-research/internal/repository/memory"
	"prime-research/internal/service"
	"prime-research/pkg/ai/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResearch struct {
	startErr error
	started  []pipeline.Input
	runs     map[string]*memory.RunRecord
	cleared  int
}

func (f *fakeResearch) Run(ctx context.Context, in pipeline.Input, onStep service.StepFunc) (pipeline.State, error) {
	return pipeline.NewState(in), nil
}

func (f *fakeResearch) Start(ctx context.Context, in pipeline.Input) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, in)
	return "session-1", nil
}

func (f *fakeResearch) GetRun(sessionId string) (*memory.RunRecord, bool) {
	r, ok := f.runs[sessionId]
	return r, ok
}

func (f *fakeResearch) StageNames() []string {
	return []string{pipeline.StageOrchestrate, pipeline.StageResearch}
}

func (f *fakeResearch) ClearIndex(ctx context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeResearch) Wait() {}

type fakeKnowledge struct {
	service.IKnowledgeService
	sessions map[string]*entity.Session
	quiz     []*entity.QuizResult
}

func (f *fakeKnowledge) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, service.ErrSessionNotFound
}

func (f *fakeKnowledge) ListSessions(ctx context.Context, limit, offset int) ([]*entity.Session, error) {
	out := make([]*entity.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeKnowledge) RecordQuizResult(ctx context.Context, sessionId string, score float64, total int) (*entity.QuizResult, error) {
	if _, ok := f.sessions[sessionId]; !ok {
		return nil, service.ErrSessionNotFound
	}
	r := &entity.QuizResult{Id: "q1", SessionId: sessionId, Score: score, TotalQuestions: total, CreatedAt: time.Now()}
	f.quiz = append(f.quiz, r)
	return r, nil
}

func (f *fakeKnowledge) ListQuizResults(ctx context.Context, sessionId string) ([]*entity.QuizResult, error) {
	return f.quiz, nil
}

func newTestApp(research *fakeResearch, knowledge *fakeKnowledge) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewResearchController(research).RegisterRoutes(api)
	NewSessionController(knowledge, research).RegisterRoutes(api)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestStartResearch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		startErr error
		wantCode int
	}{
		{name: "accepted", body: `{"topic":"tides","depth":1}`, wantCode: fiber.StatusAccepted},
		{name: "missing topic", body: `{"depth":1}`, wantCode: fiber.StatusBadRequest},
		{name: "depth out of range", body: `{"topic":"tides","depth":11}`, wantCode: fiber.StatusBadRequest},
		{name: "bad url", body: `{"topic":"tides","urls":["not a url"]}`, wantCode: fiber.StatusBadRequest},
		{name: "run in progress", body: `{"topic":"tides"}`, startErr: service.ErrRunInProgress, wantCode: fiber.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			research := &fakeResearch{startErr: tt.startErr}
			app := newTestApp(research, &fakeKnowledge{})

			code, body := doJSON(t, app, "POST", "/api/research", tt.body)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode != fiber.StatusAccepted {
				assert.Equal(t, false, body["success"])
				return
			}

			data := body["data"].(map[string]interface{})
			assert.Equal(t, "session-1", data["session_id"])
			assert.Len(t, data["stages"], 2)
			require.Len(t, research.started, 1)
			assert.Equal(t, "tides", research.started[0].Topic)
		})
	}
}

func TestClearIndex(t *testing.T) {
	research := &fakeResearch{}
	app := newTestApp(research, &fakeKnowledge{})

	code, _ := doJSON(t, app, "DELETE", "/api/index", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 1, research.cleared)
}

func TestSessionRoutes(t *testing.T) {
	knowledge := &fakeKnowledge{sessions: map[string]*entity.Session{
		"s1": {Id: "s1", Topic: "tides", Depth: 1, Summary: "Moon pulls water."},
	}}
	research := &fakeResearch{runs: map[string]*memory.RunRecord{
		"s1": {SessionId: "s1", Status: dto.RunStatusCompleted, Stage: pipeline.StageRecordProgress, State: pipeline.NewState(pipeline.Input{Topic: "tides"})},
	}}
	app := newTestApp(research, knowledge)

	t.Run("list", func(t *testing.T) {
		code, body := doJSON(t, app, "GET", "/api/sessions", "")
		assert.Equal(t, fiber.StatusOK, code)
		assert.Len(t, body["data"], 1)
	})

	t.Run("show unknown", func(t *testing.T) {
		code, body := doJSON(t, app, "GET", "/api/sessions/nope", "")
		assert.Equal(t, fiber.StatusNotFound, code)
		assert.EqualValues(t, fiber.StatusNotFound, body["code"])
	})

	t.Run("state", func(t *testing.T) {
		code, body := doJSON(t, app, "GET", "/api/sessions/s1/state", "")
		assert.Equal(t, fiber.StatusOK, code)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, dto.RunStatusCompleted, data["status"])
	})

	t.Run("state without run", func(t *testing.T) {
		code, _ := doJSON(t, app, "GET", "/api/sessions/s2/state", "")
		assert.Equal(t, fiber.StatusNotFound, code)
	})

	quizTests := []struct {
		name      string
		body      string
		wantCode  int
		wantScore float64
	}{
		{name: "record quiz result", body: `{"score":4,"total_questions":5}`, wantCode: fiber.StatusCreated, wantScore: 4},
		{name: "fractional score", body: `{"score":4.5,"total_questions":5}`, wantCode: fiber.StatusCreated, wantScore: 4.5},
		{name: "score above total", body: `{"score":6,"total_questions":5}`, wantCode: fiber.StatusBadRequest},
		{name: "fractional score above total", body: `{"score":5.25,"total_questions":5}`, wantCode: fiber.StatusBadRequest},
		{name: "negative score", body: `{"score":-1,"total_questions":5}`, wantCode: fiber.StatusBadRequest},
	}
	for _, tt := range quizTests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doJSON(t, app, "POST", "/api/sessions/s1/quiz-results", tt.body)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode != fiber.StatusCreated {
				return
			}
			data := body["data"].(map[string]interface{})
			assert.Equal(t, tt.wantScore, data["score"])
		})
	}

	t.Run("quiz result for unknown session", func(t *testing.T) {
		code, _ := doJSON(t, app, "POST", "/api/sessions/nope/quiz-results", `{"score":1,"total_questions":5}`)
		assert.Equal(t, fiber.StatusNotFound, code)
	})
}
