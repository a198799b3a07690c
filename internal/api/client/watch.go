package client

import (
	"context"

	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

// RunWatch triggers a watch cycle on the server and waits for its result.
func (c *Client) RunWatch(ctx context.Context) (*watch.CycleResult, error) {
	var res watch.CycleResult
	if err := c.post(ctx, "/api/v1/watch/run", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
