package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize overrides the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = int32(n) //nolint:gosec // pool size comes from validated config
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, "migrations/postgres", s)
}

func (s *PostgresStore) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, pgCreateMigrationsTable)
	return err
}

func (s *PostgresStore) migrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, pgMigrationApplied, version).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) applyMigration(ctx context.Context, version, sql string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, pgRecordMigration, version); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

// UpsertSnapshot inserts or updates a snapshot by item_id. A nil
// LastRestockAt keeps the stored value.
func (s *PostgresStore) UpsertSnapshot(ctx context.Context, snap *domain.StockSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	args := pgx.NamedArgs{
		"id":              snap.ID,
		"item_id":         snap.ItemID,
		"search_name":     snap.SearchName,
		"store_name":      snap.StoreName,
		"display_name":    snap.DisplayName,
		"items_available": snap.ItemsAvailable,
		"price":           snap.Price,
		"currency":        snap.Currency,
		"pickup_start":    snap.PickupStart,
		"pickup_end":      snap.PickupEnd,
		"last_restock_at": snap.LastRestockAt,
	}

	if err := s.pool.QueryRow(ctx, pgUpsertSnapshot, args).Scan(
		&snap.ID, &snap.FirstSeenAt, &snap.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upserting snapshot %s: %w", snap.ItemID, err)
	}
	return nil
}

// GetSnapshot retrieves the snapshot for an item id.
func (s *PostgresStore) GetSnapshot(ctx context.Context, itemID string) (*domain.StockSnapshot, error) {
	snap := &domain.StockSnapshot{}
	err := scanSnapshot(s.pool.QueryRow(ctx, pgGetSnapshot, itemID), snap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %s: %w", itemID, err)
	}
	return snap, nil
}

// ListSnapshots queries snapshots with optional filters, returning results
// and total count.
func (s *PostgresStore) ListSnapshots(
	ctx context.Context,
	q *SnapshotQuery,
) ([]domain.StockSnapshot, int, error) {
	if q == nil {
		q = &SnapshotQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL(dollarPlaceholder)

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting snapshots: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.StockSnapshot
	for rows.Next() {
		var snap domain.StockSnapshot
		if err := scanSnapshot(rows, &snap); err != nil {
			return nil, 0, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snaps, total, nil
}

func scanSnapshot(row pgx.Row, snap *domain.StockSnapshot) error {
	return row.Scan(
		&snap.ID, &snap.ItemID, &snap.SearchName, &snap.StoreName, &snap.DisplayName,
		&snap.ItemsAvailable, &snap.Price, &snap.Currency,
		&snap.PickupStart, &snap.PickupEnd, &snap.LastRestockAt,
		&snap.FirstSeenAt, &snap.UpdatedAt,
	)
}
