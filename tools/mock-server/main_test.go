package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startMock(t *testing.T, confirmAfter, items int) *httptest.Server {
	t.Helper()
	m := newMockServer(testLogger(), confirmAfter, items, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	srv := httptest.NewServer(m.routes())
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, email string, opts ...tgtg.Option) *tgtg.SessionClient {
	gw := tgtg.NewHTTPGateway(
		tgtg.WithBaseURL(srv.URL+"/api/"),
		tgtg.WithRetry(0, time.Millisecond, time.Millisecond),
		tgtg.WithGatewayLogger(testLogger()),
	)
	opts = append([]tgtg.Option{
		tgtg.WithLogger(testLogger()),
		tgtg.WithPollInterval(time.Millisecond),
		tgtg.WithMaxPollAttempts(5),
	}, opts...)
	sess := tgtg.NewSession(email, tgtg.WithAccessTokenLifetime(time.Hour))
	return tgtg.NewClient(gw, opts...).Bind(sess)
}

func TestLoginAndSearch(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 2, 45)

	var states []tgtg.HandshakeState
	sc := newTestClient(srv, "me@example.com", tgtg.WithHandshakeObserver(func(s tgtg.HandshakeState) {
		states = append(states, s)
	}))

	require.NoError(t, sc.Authenticate(context.Background()))
	assert.Equal(t,
		[]tgtg.HandshakeState{tgtg.StateInitiating, tgtg.StatePolling, tgtg.StateSucceeded},
		states,
	)

	snap := sc.Session().Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "1001", snap.UserID)
	assert.NotEmpty(t, snap.Cookie)

	page, err := sc.SearchItems(context.Background(), &tgtg.Criteria{
		Radius:     100,
		PageSize:   10,
		PageNumber: 1,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "100000", page.Items[0].ID())
	assert.Equal(t, "2.99 EUR", page.Items[0].Item.Price.String())
	require.NotNil(t, page.Items[0].PickupInterval)

	res, err := tgtg.NewPaginator(sc, tgtg.WithMaxPages(10)).Paginate(context.Background(), tgtg.Criteria{
		Radius:   100,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, res.Items, 45)
	assert.Equal(t, 3, res.PagesUsed)
}

func TestSearchFilters(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 30)
	sc := newTestClient(srv, "me@example.com")
	require.NoError(t, sc.Authenticate(context.Background()))

	tests := []struct {
		name     string
		criteria tgtg.Criteria
		check    func(t *testing.T, items []tgtg.Item)
	}{
		{
			name:     "with stock only",
			criteria: tgtg.Criteria{Radius: 100, PageSize: 50, WithStockOnly: true},
			check: func(t *testing.T, items []tgtg.Item) {
				assert.Len(t, items, 20)
				for i := range items {
					assert.Positive(t, items[i].ItemsAvailable)
				}
			},
		},
		{
			name:     "radius",
			criteria: tgtg.Criteria{Radius: 3, PageSize: 50},
			check: func(t *testing.T, items []tgtg.Item) {
				assert.Len(t, items, 10)
			},
		},
		{
			name:     "phrase",
			criteria: tgtg.Criteria{Radius: 100, PageSize: 50, SearchPhrase: "sushi"},
			check: func(t *testing.T, items []tgtg.Item) {
				require.Len(t, items, 3)
				assert.Contains(t, items[0].DisplayName, "Sushi Bar")
			},
		},
		{
			name:     "page past the end",
			criteria: tgtg.Criteria{Radius: 100, PageSize: 50, PageNumber: 2},
			check: func(t *testing.T, items []tgtg.Item) {
				assert.Empty(t, items)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := sc.SearchItems(context.Background(), &tt.criteria)
			require.NoError(t, err)
			tt.check(t, page.Items)
		})
	}
}

func TestLogin_Unlinked(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 1)
	sc := newTestClient(srv, "new"+unlinkedDomain)

	err := sc.Authenticate(context.Background())
	require.ErrorIs(t, err, tgtg.ErrNotLinked)
	assert.False(t, sc.Session().Snapshot().Authenticated())
}

func TestLogin_PollTimeout(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 10, 1)
	sc := newTestClient(srv, "me@example.com")

	err := sc.Authenticate(context.Background())
	require.ErrorIs(t, err, tgtg.ErrPollTimeout)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 5)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	sc := newTestClient(srv, "me@example.com", tgtg.WithNowFunc(func() time.Time { return now }))
	require.NoError(t, sc.Authenticate(context.Background()))
	before := sc.Session().Snapshot()

	now = now.Add(2 * time.Hour)
	require.NoError(t, sc.EnsureValid(context.Background()))

	after := sc.Session().Snapshot()
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
	assert.Equal(t, now, after.TokenIssuedAt)

	_, err := sc.SearchItems(context.Background(), &tgtg.Criteria{Radius: 100, PageSize: 5, PageNumber: 1})
	require.NoError(t, err, "refreshed token is accepted")
}

func TestRefresh_UnknownToken(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 1)
	body := bytes.NewBufferString(`{"refresh_token":"nope"}`)
	resp, err := http.Post(srv.URL+"/api/auth/v3/token/refresh", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSearch_RequiresToken(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 1)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/item/v8/", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer forged")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPoll_UnknownID(t *testing.T) {
	t.Parallel()

	srv := startMock(t, 0, 1)
	body := bytes.NewBufferString(`{"email":"me@example.com","request_polling_id":"missing"}`)
	resp, err := http.Post(srv.URL+"/api/auth/v3/authByRequestPollingId", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWriteJSON_Gzip(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	writeJSON(w, req, http.StatusOK, map[string]string{"state": "WAIT"})

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.NotEqual(t, byte('{'), w.Body.Bytes()[0])

	plain := httptest.NewRecorder()
	writeJSON(plain, httptest.NewRequest(http.MethodPost, "/", http.NoBody), http.StatusOK, map[string]string{"state": "WAIT"})

	var got map[string]string
	require.NoError(t, json.NewDecoder(plain.Body).Decode(&got))
	assert.Equal(t, "WAIT", got["state"])
}

func TestGenerateItems(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	items := generateItems(12, now)
	require.Len(t, items, 12)

	assert.Zero(t, items[0].ItemsAvailable, "every third item is sold out")
	assert.Equal(t, 2, items[1].ItemsAvailable)
	assert.InDelta(t, 0.3, items[0].Distance, 1e-9)
	assert.Equal(t, "Corner Bakery (Branch 2)", items[10].DisplayName)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), items[0].PickupInterval.Start)
}
