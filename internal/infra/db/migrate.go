package db

import "database/sql"

// MigrateUp creates the subscriber schema. Statements are idempotent so
// the worker can run them on every start.
func MigrateUp(pool *sql.DB) error {
	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS subscribers (
    id            SERIAL PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    subscribed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    active        BOOLEAN NOT NULL DEFAULT TRUE
)`); err != nil {
		return err
	}

	indexes := []string{
		// Newsletter fan-out reads active subscribers only.
		`CREATE INDEX IF NOT EXISTS idx_subscribers_active ON subscribers(active) WHERE active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
