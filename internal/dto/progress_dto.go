package dto

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ProgressEvent is published after each completed stage and once when a run
// ends.
type ProgressEvent struct {
	SessionId string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Step      int       `json:"step"`
	Total     int       `json:"total"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
