package store

import (
	"database/sql"
	"fmt"
)

// migration is a single named, ordered schema change. Migrations are
// forward-only and must be idempotent when rerun after a partial failure
// (spec §4.1).
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

// migrations lists every migration beyond the CoreSchema baseline, in
// ascending version order. There are none yet at SchemaVersion 1; the slice
// exists so future schema changes have a place to land without touching
// runMigrations, mirroring the teacher's RunMigrations dispatch table.
var migrations = []migration{}

// runMigrations applies any migration whose version exceeds the database's
// recorded schema_version, in order, each inside its own transaction.
func (s *Store) runMigrations() error {
	current, err := s.GetSchemaVersion()
	if err != nil {
		current = 0
	}

	log.Info("checking migrations", "current_version", current, "target_version", SchemaVersion)

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		log.Info("applying migration", "version", m.version, "name", m.name)
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("migration %s: failed to begin transaction: %w", m.name, err)
		}

		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}

		if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: failed to record version: %w", m.name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %s: failed to commit: %w", m.name, err)
		}
	}

	return nil
}
