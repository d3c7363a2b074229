package model

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	Id          string       `gorm:"type:text;primaryKey"`
	Topic       string       `gorm:"type:text;not null"`
	Timestamp   time.Time    `gorm:"column:timestamp;autoCreateTime;index"`
	Depth       int          `gorm:"default:0"`
	Summary     string       `gorm:"type:text"`
	QuizResults []QuizResult `gorm:"foreignKey:SessionId"`
}

func (Session) TableName() string {
	return "sessions"
}

type GraphNode struct {
	Id       string            `gorm:"type:text;primaryKey"`
	Label    string            `gorm:"type:text"`
	Type     string            `gorm:"type:text"`
	Metadata datatypes.JSONMap `gorm:"column:metadata"`
}

func (GraphNode) TableName() string {
	return "nodes"
}

// GraphEdge endpoints reference nodes.id without a foreign key constraint.
type GraphEdge struct {
	Id       string            `gorm:"type:text;primaryKey"`
	SourceId string            `gorm:"type:text;index"`
	TargetId string            `gorm:"type:text;index"`
	Relation string            `gorm:"type:text"`
	Metadata datatypes.JSONMap `gorm:"column:metadata"`
}

func (GraphEdge) TableName() string {
	return "edges"
}

type QuizResult struct {
	Id             string    `gorm:"type:text;primaryKey"`
	SessionId      string    `gorm:"type:text;not null;index"`
	Score          float64   `gorm:"not null"`
	TotalQuestions int       `gorm:"not null"`
	Timestamp      time.Time `gorm:"column:timestamp;autoCreateTime"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
