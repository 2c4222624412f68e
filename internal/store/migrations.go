package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Athlete profile as last fetched from intervals.icu (raw JSON)
		`CREATE TABLE IF NOT EXISTS athlete_profile (
			athlete_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,

		// Generated workouts
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			sport TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			intervals TEXT NOT NULL,
			total_seconds INTEGER NOT NULL,
			estimated_tss INTEGER,
			estimated_if REAL,
			builder_text TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_created_at ON workouts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_sport ON workouts(sport)`,

		// Workouts pushed to the intervals.icu calendar
		`CREATE TABLE IF NOT EXISTS planned_workouts (
			id INTEGER PRIMARY KEY,
			workout_id TEXT NOT NULL,
			event_id INTEGER,
			planned_date TEXT NOT NULL,
			name TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_planned_workouts_date ON planned_workouts(planned_date)`,

		// Sync State (key-value store)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
