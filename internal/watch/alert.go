package watch

import (
	"context"
	"log/slog"

	"github.com/donaldgifford/tgtg-watcher/internal/notify"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

const batchThreshold = 5

// dispatchAlerts sends one search's restocks. Five or more go out as a
// single batch message. Failures are logged and do not stop the cycle.
func dispatchAlerts(
	ctx context.Context,
	n notify.Notifier,
	log *slog.Logger,
	searchName string,
	alerts []domain.RestockAlert,
) {
	if len(alerts) >= batchThreshold {
		if err := n.SendBatchAlert(ctx, alerts, searchName); err != nil {
			log.Error("sending batch alert failed",
				"search", searchName,
				"count", len(alerts),
				"error", err,
			)
		}
		return
	}

	for i := range alerts {
		if err := n.SendAlert(ctx, &alerts[i]); err != nil {
			log.Error("sending alert failed",
				"search", searchName,
				"item", alerts[i].Snapshot.ItemID,
				"error", err,
			)
		}
	}
}
