package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/watch"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.Session(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Session(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
	assert.False(t, IsConflict(err))
}

func TestClient_Session(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/session", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"user@example.com","authenticated":true,"user_id":"42","expires_at":"2026-03-14T12:00:00Z"}`))
	}))
	defer srv.Close()

	s, err := New(srv.URL + "/").Session(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
	assert.Equal(t, "42", s.UserID)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, 12, s.ExpiresAt.Hour())
}

func TestClient_RefreshSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/session/refresh", r.URL.Path)
		_, _ = w.Write([]byte(`{"email":"user@example.com","authenticated":true}`))
	}))
	defer srv.Close()

	s, err := New(srv.URL).RefreshSession(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		wantConflict bool
	}{
		{
			name:        "accepted",
			status:      http.StatusAccepted,
			body:        `{"message":"login email sent to user@example.com; open the link to confirm"}`,
			wantMessage: "login email sent to user@example.com; open the link to confirm",
		},
		{
			name:         "already waiting",
			status:       http.StatusConflict,
			body:         `{"detail":"a login is already waiting for confirmation"}`,
			wantConflict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/session/login", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			msg, err := New(srv.URL).Login(context.Background())
			if tt.wantConflict {
				require.Error(t, err)
				assert.True(t, IsConflict(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
		})
	}
}

func TestClient_RunWatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         any
		wantErr      bool
		wantConflict bool
	}{
		{
			name:   "cycle result",
			status: http.StatusOK,
			body:   watch.CycleResult{SearchesRun: 2, Restocks: 1},
		},
		{
			name:         "conflict",
			status:       http.StatusConflict,
			body:         map[string]string{"detail": "a watch cycle is already running"},
			wantErr:      true,
			wantConflict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/watch/run", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			res, err := New(srv.URL).RunWatch(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantConflict, IsConflict(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, res.SearchesRun)
			assert.Equal(t, 1, res.Restocks)
		})
	}
}

func TestClient_ListSnapshots(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/snapshots", r.URL.Path)
		assert.Equal(t, "home", r.URL.Query().Get("search"))
		assert.Equal(t, "true", r.URL.Query().Get("in_stock"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SnapshotsResponse{
			Snapshots: []domain.StockSnapshot{{ItemID: "101", ItemsAvailable: 2}},
			Total:     1,
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).ListSnapshots(context.Background(), &ListSnapshotsParams{
		Search:  "home",
		InStock: true,
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Snapshots, 1)
	assert.Equal(t, "101", resp.Snapshots[0].ItemID)
}

func TestClient_GetSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/snapshots/101", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.StockSnapshot{ItemID: "101", ItemsAvailable: 4})
	}))
	defer srv.Close()

	s, err := New(srv.URL).GetSnapshot(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, 4, s.ItemsAvailable)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
