package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per processed image, successful or not.
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('ok', 'failed')),
			error TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			tip_x REAL NOT NULL DEFAULT 0,
			tip_y REAL NOT NULL DEFAULT 0,
			bearing REAL NOT NULL DEFAULT 0,
			tip_px REAL NOT NULL DEFAULT 0,
			tip_py REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_readings_created_at ON readings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_source ON readings(source)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
