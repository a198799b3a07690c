package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendAlert logs and discards a single alert.
func (n *NoOpNotifier) SendAlert(_ context.Context, alert *domain.RestockAlert) error {
	n.log.Debug("notification discarded (no backend configured)",
		"search", alert.Snapshot.SearchName,
		"item", alert.Snapshot.ItemID,
		"available", alert.Snapshot.ItemsAvailable,
	)
	return nil
}

// SendBatchAlert logs and discards a batch of alerts.
func (n *NoOpNotifier) SendBatchAlert(_ context.Context, alerts []domain.RestockAlert, searchName string) error {
	n.log.Debug("batch notification discarded (no backend configured)",
		"search", searchName,
		"count", len(alerts),
	)
	return nil
}
