package specification

import (
	"prime-research/internal/repository/scope"

	"gorm.io/gorm"
)

// MostRecentFirst orders sessions or quiz results by their timestamp column.
type MostRecentFirst struct{}

func (s MostRecentFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.NewestFirst)
}

// OldestFirst orders sessions or quiz results chronologically.
type OldestFirst struct{}

func (s OldestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OldestFirst)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// TouchingNodes matches edges with either endpoint in NodeIDs.
type TouchingNodes struct {
	NodeIDs []string
}

func (s TouchingNodes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id IN ? OR target_id IN ?", s.NodeIDs, s.NodeIDs)
}
