package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// sqliteTimeFormat is fixed-width so stored timestamps sort as text.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLiteStore implements Store on a local SQLite file. It is the default
// backend for single-user installs.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	nowFunc func() time.Time
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteNowFunc overrides the time function for testing.
func WithSQLiteNowFunc(f func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		s.nowFunc = f
	}
}

// NewSQLiteStore opens (creating if needed) the database at path. Pass
// MemoryPath for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		// WAL mode for concurrent readers while the watcher writes.
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == MemoryPath {
		// Every new connection to :memory: is a fresh, empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, nowFunc: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, "migrations/sqlite", s)
}

func (s *SQLiteStore) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteCreateMigrationsTable)
	return err
}

func (s *SQLiteStore) migrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, sqliteMigrationApplied, version).Scan(&exists)
	return exists, err
}

func (s *SQLiteStore) applyMigration(ctx context.Context, version, stmt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, sqliteRecordMigration, version); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

// UpsertSnapshot inserts or updates a snapshot by item_id. A nil
// LastRestockAt keeps the stored value.
func (s *SQLiteStore) UpsertSnapshot(ctx context.Context, snap *domain.StockSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	now := formatTime(s.nowFunc())

	var id, firstSeen, updated string
	err := s.db.QueryRowContext(ctx, sqliteUpsertSnapshot,
		snap.ID, snap.ItemID, snap.SearchName, snap.StoreName, snap.DisplayName,
		snap.ItemsAvailable, snap.Price, snap.Currency,
		formatNullableTime(snap.PickupStart),
		formatNullableTime(snap.PickupEnd),
		formatNullableTime(snap.LastRestockAt),
		now, now,
	).Scan(&id, &firstSeen, &updated)
	if err != nil {
		return fmt.Errorf("upserting snapshot %s: %w", snap.ItemID, err)
	}

	snap.ID = id
	if snap.FirstSeenAt, err = parseTime(firstSeen); err != nil {
		return fmt.Errorf("parsing first_seen_at: %w", err)
	}
	if snap.UpdatedAt, err = parseTime(updated); err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the snapshot for an item id.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, itemID string) (*domain.StockSnapshot, error) {
	snap := &domain.StockSnapshot{}
	err := scanSQLiteSnapshot(s.db.QueryRowContext(ctx, sqliteGetSnapshot, itemID), snap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %s: %w", itemID, err)
	}
	return snap, nil
}

// ListSnapshots queries snapshots with optional filters, returning results
// and total count.
func (s *SQLiteStore) ListSnapshots(
	ctx context.Context,
	q *SnapshotQuery,
) ([]domain.StockSnapshot, int, error) {
	if q == nil {
		q = &SnapshotQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL(questionPlaceholder)

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting snapshots: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.StockSnapshot
	for rows.Next() {
		var snap domain.StockSnapshot
		if err := scanSQLiteSnapshot(rows, &snap); err != nil {
			return nil, 0, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snaps, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSnapshot(row rowScanner, snap *domain.StockSnapshot) error {
	var (
		pickupStart, pickupEnd, lastRestock sql.NullString
		firstSeen, updated                  string
	)
	if err := row.Scan(
		&snap.ID, &snap.ItemID, &snap.SearchName, &snap.StoreName, &snap.DisplayName,
		&snap.ItemsAvailable, &snap.Price, &snap.Currency,
		&pickupStart, &pickupEnd, &lastRestock,
		&firstSeen, &updated,
	); err != nil {
		return err
	}

	var err error
	if snap.PickupStart, err = parseNullableTime(pickupStart); err != nil {
		return fmt.Errorf("parsing pickup_start: %w", err)
	}
	if snap.PickupEnd, err = parseNullableTime(pickupEnd); err != nil {
		return fmt.Errorf("parsing pickup_end: %w", err)
	}
	if snap.LastRestockAt, err = parseNullableTime(lastRestock); err != nil {
		return fmt.Errorf("parsing last_restock_at: %w", err)
	}
	if snap.FirstSeenAt, err = parseTime(firstSeen); err != nil {
		return fmt.Errorf("parsing first_seen_at: %w", err)
	}
	if snap.UpdatedAt, err = parseTime(updated); err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}

// formatNullableTime formats a time for storage, or returns nil for NULL.
func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeFormat, s)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
