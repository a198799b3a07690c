package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/api/handlers"
	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

func TestWatchHandler_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		result     *watch.CycleResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "cycle completes",
			result:     &watch.CycleResult{SearchesRun: 2, ItemsSeen: 7, Restocks: 1},
			wantStatus: http.StatusOK,
			wantBody:   `"restocks":1`,
		},
		{
			name:       "partial failure is reported",
			result:     &watch.CycleResult{SearchesRun: 2, Failed: []string{"office"}},
			wantStatus: http.StatusOK,
			wantBody:   `"failed":["office"]`,
		},
		{
			name:       "cycle already running",
			err:        watch.ErrCycleRunning,
			wantStatus: http.StatusConflict,
			wantBody:   "already running",
		},
		{
			name:       "cycle aborted",
			err:        errors.New("context canceled"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "watch cycle failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewWatchHandler(runnerFunc(func(context.Context) (*watch.CycleResult, error) {
				return tt.result, tt.err
			}))

			_, api := humatest.New(t)
			handlers.RegisterWatchRoutes(api, h)

			resp := api.Post("/api/v1/watch/run")
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}
