package database

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Statements are idempotent so the function is
// safe to run on every startup.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			city TEXT NOT NULL,
			user_id TEXT NOT NULL,
			traj_id TEXT NOT NULL,
			prompt_type TEXT NOT NULL,
			model TEXT NOT NULL,
			platform TEXT NOT NULL,
			predicted_venue TEXT NOT NULL,
			ground_venue TEXT NOT NULL,
			reason TEXT,
			parse_stage TEXT,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_city ON predictions(city)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
