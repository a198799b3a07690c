package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/tgtg-watcher/internal/store"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// SnapshotsHandler handles stock snapshot queries.
type SnapshotsHandler struct {
	store store.Store
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(s store.Store) *SnapshotsHandler {
	return &SnapshotsHandler{store: s}
}

// ListSnapshotsInput filters the snapshot list.
type ListSnapshotsInput struct {
	Search  string `query:"search"   doc:"Filter by saved search name"`
	InStock bool   `query:"in_stock" doc:"Only bags with stock left"`
	Limit   int    `query:"limit"    doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
	Offset  int    `query:"offset"   doc:"Pagination offset"              minimum:"0"`
	OrderBy string `query:"order_by" doc:"Sort field"                     enum:"available,name,updated_at,"`
}

// ListSnapshotsOutput is the response for listing snapshots.
type ListSnapshotsOutput struct {
	Body struct {
		Snapshots []domain.StockSnapshot `json:"snapshots"`
		Total     int                    `json:"total"`
		Limit     int                    `json:"limit"`
		Offset    int                    `json:"offset"`
	}
}

// GetSnapshotInput selects one snapshot.
type GetSnapshotInput struct {
	ItemID string `path:"item_id" doc:"Marketplace item id"`
}

// GetSnapshotOutput is the response for a single snapshot.
type GetSnapshotOutput struct {
	Body domain.StockSnapshot
}

// ListSnapshots returns recorded stock levels.
func (h *SnapshotsHandler) ListSnapshots(
	ctx context.Context,
	input *ListSnapshotsInput,
) (*ListSnapshotsOutput, error) {
	q := &store.SnapshotQuery{
		InStockOnly: input.InStock,
		Limit:       input.Limit,
		Offset:      input.Offset,
		OrderBy:     input.OrderBy,
	}
	if input.Search != "" {
		q.SearchName = &input.Search
	}

	snaps, total, err := h.store.ListSnapshots(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("snapshot query failed: " + err.Error())
	}

	resp := &ListSnapshotsOutput{}
	resp.Body.Snapshots = snaps
	if resp.Body.Snapshots == nil {
		resp.Body.Snapshots = []domain.StockSnapshot{}
	}
	resp.Body.Total = total
	resp.Body.Limit = q.EffectiveLimit()
	resp.Body.Offset = q.Offset
	return resp, nil
}

// GetSnapshot returns the last recorded stock level of one bag.
func (h *SnapshotsHandler) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error) {
	snap, err := h.store.GetSnapshot(ctx, input.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("no snapshot for item " + input.ItemID)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("snapshot lookup failed: " + err.Error())
	}
	return &GetSnapshotOutput{Body: *snap}, nil
}

// RegisterSnapshotRoutes registers snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List stock snapshots",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListSnapshots)

	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{item_id}",
		Summary:     "Get a stock snapshot",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetSnapshot)
}
