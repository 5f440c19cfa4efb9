package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nhle/offercal/internal/model"
)

// SQLiteStore implements OfferStore on a local SQLite database. Each Save
// records a new snapshot row and drops the previous one.
type SQLiteStore struct {
	db     *sqlx.DB
	path   string
	logger zerolog.Logger
}

// offerRow is the stored form of an offer. Timestamps are kept as text in
// TimestampLayout so the original UTC offset survives.
type offerRow struct {
	Timestamp string `db:"timestamp"`
	Subject   string `db:"subject"`
}

// sqlitePragmas are applied by the driver to every pooled connection, so
// foreign keys are enforced no matter which connection runs a statement.
const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// NewSQLiteStore opens (or creates) a SQLite database at dbPath in WAL
// mode with foreign keys enforced, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &model.FileSystemError{Op: "opening sqlite db", Path: dbPath, Err: err}
	}

	s := &SQLiteStore{db: db, path: dbPath, logger: logger.With().Str("db", dbPath).Logger()}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", dbPath, err)
	}

	return s, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Exists reports whether any snapshot has been saved.
func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM snapshots"); err != nil {
		return false, fmt.Errorf("counting snapshots: %w", err)
	}
	return count > 0, nil
}

// Load returns the offers of the most recent snapshot in saved order.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Offer, error) {
	var snapshotID string
	err := s.db.GetContext(ctx, &snapshotID,
		"SELECT id FROM snapshots ORDER BY saved_at DESC LIMIT 1",
	)
	if err != nil {
		return nil, fmt.Errorf("finding latest snapshot: %w", err)
	}

	var rows []offerRow
	err = s.db.SelectContext(ctx, &rows,
		"SELECT timestamp, subject FROM offers WHERE snapshot_id = ? ORDER BY position",
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying offers of snapshot %s: %w", snapshotID, err)
	}

	offers := make([]model.Offer, 0, len(rows))
	for i, r := range rows {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("offer %d of snapshot %s: %w", i, snapshotID, err)
		}
		offers = append(offers, model.Offer{Timestamp: ts, Subject: r.Subject})
	}

	s.logger.Info().
		Str("snapshot", snapshotID).
		Int("offers", len(offers)).
		Msg("loaded offers from database")

	return offers, nil
}

// Save replaces the stored collection in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, offers []model.Offer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Offers of the previous snapshot go with it through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	snapshotID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, offer_count, saved_at) VALUES (?, ?, ?)",
		snapshotID, len(offers), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", snapshotID, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO offers (snapshot_id, position, timestamp, subject)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, o := range offers {
		_, err := stmt.ExecContext(ctx, snapshotID, i, formatTimestamp(o.Timestamp), o.Subject)
		if err != nil {
			return fmt.Errorf("inserting offer %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot %s: %w", snapshotID, err)
	}

	s.logger.Info().
		Str("snapshot", snapshotID).
		Int("offers", len(offers)).
		Msg("saved offers to database")

	return nil
}
