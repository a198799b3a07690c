// Package store defines the datastore abstraction for tgtg-watcher.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SnapshotQuery defines optional filters for snapshot queries.
type SnapshotQuery struct {
	SearchName  *string
	InStockOnly bool
	Limit       int // default 50
	Offset      int
	OrderBy     string // "available", "name", "updated_at"
}

// Store defines all data access operations for tgtg-watcher.
type Store interface {
	// Snapshots
	GetSnapshot(ctx context.Context, itemID string) (*domain.StockSnapshot, error)
	UpsertSnapshot(ctx context.Context, s *domain.StockSnapshot) error
	ListSnapshots(ctx context.Context, q *SnapshotQuery) ([]domain.StockSnapshot, int, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error

	Close() error
}
