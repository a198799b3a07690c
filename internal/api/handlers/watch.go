package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

// CycleRunner runs one watch cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context) (*watch.CycleResult, error)
}

// WatchHandler handles manual watch cycle triggers.
type WatchHandler struct {
	runner CycleRunner
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(r CycleRunner) *WatchHandler {
	return &WatchHandler{runner: r}
}

// WatchRunOutput is the response body for the watch run endpoint.
type WatchRunOutput struct {
	Body watch.CycleResult
}

// Run triggers a watch cycle and waits for it to finish.
func (h *WatchHandler) Run(ctx context.Context, _ *struct{}) (*WatchRunOutput, error) {
	res, err := h.runner.RunOnce(ctx)
	if errors.Is(err, watch.ErrCycleRunning) {
		return nil, huma.Error409Conflict("a watch cycle is already running")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("watch cycle failed: " + err.Error())
	}
	return &WatchRunOutput{Body: *res}, nil
}

// RegisterWatchRoutes registers watch endpoints with the Huma API.
func RegisterWatchRoutes(api huma.API, h *WatchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "run-watch",
		Method:      http.MethodPost,
		Path:        "/api/v1/watch/run",
		Summary:     "Run a watch cycle",
		Description: "Runs every saved search once, records stock snapshots and sends restock alerts.",
		Tags:        []string{"watch"},
		Errors:      []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Run)
}
