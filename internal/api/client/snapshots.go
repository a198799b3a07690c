package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

// SnapshotsResponse wraps a paginated snapshot list.
type SnapshotsResponse struct {
	Snapshots []domain.StockSnapshot `json:"snapshots"`
	Total     int                    `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// ListSnapshotsParams defines query parameters for snapshot queries.
type ListSnapshotsParams struct {
	Search  string
	InStock bool
	Limit   int
	Offset  int
	OrderBy string
}

// ListSnapshots returns snapshots matching the given parameters.
func (c *Client) ListSnapshots(
	ctx context.Context,
	params *ListSnapshotsParams,
) (*SnapshotsResponse, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.InStock {
		q.Set("in_stock", "true")
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OrderBy != "" {
		q.Set("order_by", params.OrderBy)
	}

	path := "/api/v1/snapshots"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp SnapshotsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSnapshot returns the snapshot for one item.
func (c *Client) GetSnapshot(ctx context.Context, itemID string) (*domain.StockSnapshot, error) {
	var s domain.StockSnapshot
	if err := c.get(ctx, "/api/v1/snapshots/"+url.PathEscape(itemID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
