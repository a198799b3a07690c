// Package notify defines the notification interface and implementations
// for restock alert delivery.
package notify

import (
	"context"

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// ShareURL returns the public link for a surprise bag.
func ShareURL(itemID string) string {
	return "https://share.toogoodtogo.com/item/" + itemID
}

// Notifier defines the interface for sending restock notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *domain.RestockAlert) error
	SendBatchAlert(ctx context.Context, alerts []domain.RestockAlert, searchName string) error
}
