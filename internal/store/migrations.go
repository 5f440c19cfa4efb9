package store

import (
	"context"
	"fmt"
)

type migration struct {
	version int
	sql     string
}

// migrations must stay ordered by version, starting at 1. Each one records
// its own version in schema_version.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	offer_count INTEGER NOT NULL DEFAULT 0,
	saved_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS offers (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	timestamp   TEXT NOT NULL,
	subject     TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
-- Load picks the latest snapshot by saved_at.
CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

// schemaVersion returns the highest applied migration, or 0 for a fresh
// database.
func (s *SQLiteStore) schemaVersion(ctx context.Context) (int, error) {
	var tables int
	err := s.db.GetContext(ctx, &tables,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	)
	if err != nil || tables == 0 {
		return 0, err
	}

	var version int
	if err := s.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, err
	}
	return version, nil
}

// migrate applies every migration newer than the schema version, each in
// its own transaction.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}

		s.logger.Debug().Int("version", m.version).Msg("applied migration")
	}

	return nil
}
