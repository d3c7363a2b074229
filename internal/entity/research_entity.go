package entity

import "time"

type Session struct {
	Id        string
	Topic     string
	Depth     int
	Summary   string
	CreatedAt time.Time
}

// GraphNode ids come from the extraction step, not from the store.
type GraphNode struct {
	Id       string
	Label    string
	Type     string
	Metadata map[string]interface{}
}

type GraphEdge struct {
	Id       string
	SourceId string
	TargetId string
	Relation string
	Metadata map[string]interface{}
}

type QuizResult struct {
	Id             string
	SessionId      string
	Score          float64
	TotalQuestions int
	CreatedAt      time.Time
}
