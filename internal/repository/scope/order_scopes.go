package scope

import "gorm.io/gorm"

// NewestFirst orders rows by their timestamp column, breaking ties by id.
// Rows keyed by UUIDv7 therefore fall back to insertion order.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp DESC").Order("id DESC")
}

func OldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp ASC").Order("id ASC")
}
