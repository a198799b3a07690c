package tgtg_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

func TestEnsureValid_NotAuthenticated(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	c := p.client()

	err := c.EnsureValid(context.Background(), tgtg.NewSession("user@example.com"))
	require.ErrorIs(t, err, tgtg.ErrNotAuthenticated)
	assert.Equal(t, 0, p.totalHits())
}

func TestEnsureValid_FreshTokenIsNoOp(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	clk := newClock()
	c, sess := loggedIn(t, p, clk)

	clk.Advance(time.Hour)
	require.NoError(t, c.EnsureValid(context.Background(), sess))

	assert.Equal(t, 0, p.hitCount(pathRefresh))
	assert.Equal(t, "access-1", sess.Snapshot().AccessToken)
}

func TestEnsureValid_RefreshesOnceWhenStale(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	clk := newClock()
	c, sess := loggedIn(t, p, clk)
	p.handle(pathRefresh, respond(http.StatusOK, `{"access_token":"access-2","refresh_token":"refresh-2"}`))

	// Inside the 60s margin before the 24h lifetime runs out.
	clk.Advance(tgtg.DefaultAccessTokenLifetime - 30*time.Second)
	require.NoError(t, c.EnsureValid(context.Background(), sess))

	snap := sess.Snapshot()
	assert.Equal(t, "access-2", snap.AccessToken)
	assert.Equal(t, "refresh-2", snap.RefreshToken)
	assert.Equal(t, clk.Now(), snap.TokenIssuedAt)
	assert.Equal(t, map[string]any{"refresh_token": "refresh-1"}, p.lastBody(pathRefresh))
	assert.Equal(t, "Bearer access-1", p.lastHeader(pathRefresh).Get("Authorization"))

	require.NoError(t, c.EnsureValid(context.Background(), sess))
	assert.Equal(t, 1, p.hitCount(pathRefresh))
}

func TestEnsureValid_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	clk := newClock()
	c, sess := loggedIn(t, p, clk, tgtg.WithRefreshMargin(time.Hour))
	p.handle(pathRefresh, respond(http.StatusOK, `{"access_token":"access-2"}`))

	clk.Advance(23 * time.Hour)
	require.NoError(t, c.EnsureValid(context.Background(), sess))

	snap := sess.Snapshot()
	assert.Equal(t, "access-2", snap.AccessToken)
	assert.Equal(t, "refresh-1", snap.RefreshToken)
}

func TestEnsureValid_Rejected(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	clk := newClock()
	c, sess := loggedIn(t, p, clk)
	p.handle(pathRefresh, respond(http.StatusUnauthorized, `{"errors":["invalid refresh token"]}`))

	clk.Advance(tgtg.DefaultAccessTokenLifetime)
	err := c.EnsureValid(context.Background(), sess)
	require.ErrorIs(t, err, tgtg.ErrSessionExpired)

	var se *tgtg.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)

	snap := sess.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.Empty(t, snap.RefreshToken)
	assert.True(t, snap.TokenIssuedAt.IsZero())

	// A cleared session needs a new handshake.
	err = c.EnsureValid(context.Background(), sess)
	require.ErrorIs(t, err, tgtg.ErrNotAuthenticated)
	assert.Equal(t, 1, p.hitCount(pathRefresh))
}

func TestEnsureValid_TransportErrorKeepsTokens(t *testing.T) {
	t.Parallel()

	p := newPlatform(t)
	clk := newClock()
	_, sess := loggedIn(t, p, clk)

	// Same session, but the refresh goes to a server that is gone.
	dead := newPlatform(t)
	dead.srv.Close()
	c := tgtg.NewClient(dead.gateway(),
		tgtg.WithLogger(quietLogger()),
		tgtg.WithNowFunc(clk.Now),
	)

	clk.Advance(tgtg.DefaultAccessTokenLifetime)
	err := c.EnsureValid(context.Background(), sess)
	require.Error(t, err)

	var te *tgtg.TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, errors.Is(err, tgtg.ErrSessionExpired))
	assert.Equal(t, "access-1", sess.Snapshot().AccessToken)
}
