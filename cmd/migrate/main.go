package main

import (
	"log"

	"prime-research/internal/config"
	"prime-research/internal/model"
	"prime-research/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
		Path:   cfg.Database.Path,
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	withVector := cfg.Vector.Backend == "pgvector"
	if withVector && cfg.Database.Driver != "postgres" {
		log.Fatal("Error: VECTOR_BACKEND=pgvector requires DB_DRIVER=postgres")
	}

	log.Printf("Starting GORM Migration (%s)...", cfg.Database.Driver)

	// 3. AutoMigrate All Models
	models := model.ResearchModels()
	if withVector {
		models = append(models, model.VectorModels()...)
	}
	log.Printf("Step 1: Running AutoMigrate for %d Tables...", len(models))
	if err := database.Migrate(db, withVector, models...); err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 4. Post-Migration: Views (PostgreSQL only)
	if cfg.Database.Driver == "postgres" {
		log.Println("Step 2: Creating Views...")

		postMigrationSQL := []string{
			// View: session_quiz_progress
			`CREATE OR REPLACE VIEW session_quiz_progress AS
			 SELECT s.id AS session_id, s.topic, COUNT(q.id) AS attempts,
			        COALESCE(MAX(q.score::float / NULLIF(q.total_questions, 0)), 0) AS best_ratio
			 FROM sessions s LEFT JOIN quiz_results q ON q.session_id = s.id
			 GROUP BY s.id, s.topic;`,
		}

		for _, sql := range postMigrationSQL {
			if err := db.Exec(sql).Error; err != nil {
				log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
			}
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
