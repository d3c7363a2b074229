package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the given tables. With withVector set it first
// enables the pgvector extension, which only PostgreSQL supports.
func Migrate(db *gorm.DB, withVector bool, models ...interface{}) error {
	if withVector {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to enable pgvector extension: %w", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
