// Package watch polls saved searches, records stock snapshots and raises
// restock alerts.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
	"github.com/donaldgifford/tgtg-watcher/internal/notify"
	"github.com/donaldgifford/tgtg-watcher/internal/store"
	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

const defaultMaxPages = 5

// ErrCycleRunning is returned by RunOnce when another cycle is in progress.
var ErrCycleRunning = errors.New("watch cycle already running")

// Search is a named item search run every cycle.
type Search struct {
	Name     string
	Criteria tgtg.Criteria
	MaxPages int
}

// CycleResult summarizes one watch cycle.
type CycleResult struct {
	SearchesRun int      `json:"searches_run"`
	ItemsSeen   int      `json:"items_seen"`
	Restocks    int      `json:"restocks"`
	Failed      []string `json:"failed,omitempty"`
}

// Watcher runs saved searches and turns stock changes into alerts.
type Watcher struct {
	searcher tgtg.Searcher
	store    store.Store
	notifier notify.Notifier
	searches []Search
	log      *slog.Logger
	nowFunc  func() time.Time

	staggerOffset time.Duration
	notifyNew     bool

	running sync.Mutex
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(w *Watcher) {
		w.nowFunc = f
	}
}

// WithStaggerOffset sets the delay between searches.
func WithStaggerOffset(d time.Duration) Option {
	return func(w *Watcher) {
		w.staggerOffset = d
	}
}

// WithNotifyNew controls whether bags seen for the first time while in
// stock raise an alert. Enabled by default.
func WithNotifyNew(enabled bool) Option {
	return func(w *Watcher) {
		w.notifyNew = enabled
	}
}

// NewWatcher creates a Watcher with injected dependencies.
func NewWatcher(
	s tgtg.Searcher,
	st store.Store,
	n notify.Notifier,
	searches []Search,
	opts ...Option,
) *Watcher {
	w := &Watcher{
		searcher:      s,
		store:         st,
		notifier:      n,
		searches:      searches,
		log:           slog.Default(),
		nowFunc:       time.Now,
		staggerOffset: 2 * time.Second,
		notifyNew:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Searches returns the configured searches.
func (w *Watcher) Searches() []Search {
	return w.searches
}

// RunOnce runs every saved search once. A failing search is logged and
// listed in the result; only cancellation aborts the cycle.
func (w *Watcher) RunOnce(ctx context.Context) (*CycleResult, error) {
	if !w.running.TryLock() {
		return nil, ErrCycleRunning
	}
	defer w.running.Unlock()

	start := time.Now()
	defer func() {
		metrics.WatchCycleDuration.Observe(time.Since(start).Seconds())
	}()

	result := &CycleResult{}
	available := make(map[string]int)

	for i := range w.searches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s := &w.searches[i]
		w.log.Info("running search", "search", s.Name)

		alerts, seen, err := w.runSearch(ctx, s, available)
		result.SearchesRun++
		result.ItemsSeen += seen
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			w.log.Error("search failed", "search", s.Name, "error", err)
			metrics.WatchErrorsTotal.Inc()
			result.Failed = append(result.Failed, s.Name)
		}

		if len(alerts) > 0 {
			result.Restocks += len(alerts)
			dispatchAlerts(ctx, w.notifier, w.log, s.Name, alerts)
		}

		if i < len(w.searches)-1 && w.staggerOffset > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(w.staggerOffset):
			}
		}
	}

	var total int
	for _, n := range available {
		total += n
	}
	metrics.BagsAvailableGauge.Set(float64(total))
	if len(result.Failed) == 0 {
		metrics.WatchLastSuccessTimestamp.Set(float64(w.nowFunc().Unix()))
	}

	w.log.Info("watch cycle complete",
		"searches", result.SearchesRun,
		"items", result.ItemsSeen,
		"restocks", result.Restocks,
		"failed", len(result.Failed),
	)

	return result, nil
}

func (w *Watcher) runSearch(
	ctx context.Context,
	s *Search,
	available map[string]int,
) ([]domain.RestockAlert, int, error) {
	maxPages := s.MaxPages
	if maxPages < 1 {
		maxPages = defaultMaxPages
	}
	p := tgtg.NewPaginator(w.searcher,
		tgtg.WithMaxPages(maxPages),
		tgtg.WithPaginatorLogger(w.log),
	)

	page, err := p.Paginate(ctx, s.Criteria)
	if err != nil {
		return nil, 0, fmt.Errorf("paginating %s: %w", s.Name, err)
	}
	w.log.Debug("paginated search complete",
		"search", s.Name,
		"pages_used", page.PagesUsed,
		"items", len(page.Items),
		"stopped_at", page.StoppedAt,
	)

	var alerts []domain.RestockAlert
	for i := range page.Items {
		item := &page.Items[i]
		if item.ID() == "" {
			continue
		}
		available[item.ID()] = item.ItemsAvailable

		alert, err := w.recordItem(ctx, s.Name, item)
		if err != nil {
			w.log.Error("recording snapshot failed", "item", item.ID(), "error", err)
			metrics.WatchErrorsTotal.Inc()
			continue
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	return alerts, len(page.Items), nil
}

// recordItem stores the item's stock level and returns an alert when it
// went from sold out or unknown to available.
func (w *Watcher) recordItem(
	ctx context.Context,
	searchName string,
	item *tgtg.Item,
) (*domain.RestockAlert, error) {
	previous := -1
	prev, err := w.store.GetSnapshot(ctx, item.ID())
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	default:
		previous = prev.ItemsAvailable
	}

	now := w.nowFunc()
	snap := SnapshotFromItem(searchName, item)
	if prev != nil {
		snap.ID = prev.ID
	}

	restocked := snap.InStock() && previous <= 0 && (previous == 0 || w.notifyNew)
	if restocked {
		snap.LastRestockAt = &now
	}

	if err := w.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	metrics.SnapshotsRecordedTotal.Inc()

	if !restocked {
		return nil, nil
	}

	metrics.AlertsFiredTotal.Inc()
	w.log.Info("restock detected",
		"search", searchName,
		"item", snap.ItemID,
		"store", snap.StoreName,
		"previous", previous,
		"available", snap.ItemsAvailable,
	)
	return &domain.RestockAlert{
		Snapshot: *snap,
		Previous: previous,
		SeenAt:   now,
	}, nil
}

// SnapshotFromItem converts a search result into a stock snapshot.
func SnapshotFromItem(searchName string, item *tgtg.Item) *domain.StockSnapshot {
	snap := &domain.StockSnapshot{
		ItemID:         item.ID(),
		SearchName:     searchName,
		StoreName:      item.Store.StoreName,
		DisplayName:    item.DisplayName,
		ItemsAvailable: item.ItemsAvailable,
		Price:          item.Item.Price.Amount(),
		Currency:       item.Item.Price.Code,
	}
	if snap.DisplayName == "" {
		snap.DisplayName = item.Store.StoreName
	}
	if pi := item.PickupInterval; pi.Valid() {
		start, end := pi.Start, pi.End
		snap.PickupStart = &start
		snap.PickupEnd = &end
	}
	return snap
}
