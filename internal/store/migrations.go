package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Usage events table - one row per dispatched gesture
		`CREATE TABLE IF NOT EXISTS usage_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			occurred_at DATETIME NOT NULL,
			profile_id TEXT NOT NULL DEFAULT '',
			gesture_id TEXT NOT NULL,
			gesture_label TEXT NOT NULL DEFAULT '',
			tokens TEXT NOT NULL DEFAULT '',
			dir_mode TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL DEFAULT '',
			distance REAL NOT NULL DEFAULT 0
		)`,

		// Indexes for the reporting queries
		`CREATE INDEX IF NOT EXISTS idx_usage_events_occurred_at ON usage_events(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_events_gesture_id ON usage_events(gesture_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
