package dto

import (
	"time"

	"prime-research/internal/entity"
	"prime-research/pkg/ai/pipeline"
)

type ResearchRequest struct {
	Topic string   `json:"topic" validate:"required,max=500"`
	Depth int      `json:"depth" validate:"min=0,max=10"`
	URLs  []string `json:"urls" validate:"omitempty,dive,url"`
	Files []string `json:"files"`
}

func (r ResearchRequest) ToInput() pipeline.Input {
	return pipeline.Input{
		Topic: r.Topic,
		Depth: r.Depth,
		URLs:  r.URLs,
		Files: r.Files,
	}
}

type ResearchStartedResponse struct {
	SessionId string   `json:"session_id"`
	Stages    []string `json:"stages"`
}

type SessionResponse struct {
	Id        string    `json:"id"`
	Topic     string    `json:"topic"`
	Depth     int       `json:"depth"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSessionResponse(s *entity.Session) SessionResponse {
	return SessionResponse{
		Id:        s.Id,
		Topic:     s.Topic,
		Depth:     s.Depth,
		Summary:   s.Summary,
		CreatedAt: s.CreatedAt,
	}
}

type RunStateResponse struct {
	SessionId  string         `json:"session_id"`
	Status     string         `json:"status"`
	Stage      string         `json:"stage"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	State      pipeline.State `json:"state"`
}

type QuizResultRequest struct {
	Score          float64 `json:"score" validate:"min=0"`
	TotalQuestions int     `json:"total_questions" validate:"min=1"`
}

type QuizResultResponse struct {
	Id             string    `json:"id"`
	SessionId      string    `json:"session_id"`
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewQuizResultResponse(r *entity.QuizResult) QuizResultResponse {
	return QuizResultResponse{
		Id:             r.Id,
		SessionId:      r.SessionId,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CreatedAt:      r.CreatedAt,
	}
}
