package tgtg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	// RefreshToken is rotated by some deployments; keep the old one if absent.
	RefreshToken string `json:"refresh_token"`
}

// credentials are the values an authenticated request needs, copied out of a
// Session while its lock is held.
type credentials struct {
	accessToken string
	cookie      string
}

// EnsureValid makes sure sess holds an access token that is not about to
// expire. A token older than its lifetime minus the refresh margin is
// renewed with the refresh token. If the platform rejects the refresh, the
// session's tokens are cleared and ErrSessionExpired is returned; the
// handshake must then be run again.
func (c *Client) EnsureValid(ctx context.Context, sess *Session) error {
	_, err := c.ensureValid(ctx, sess)
	return err
}

func (c *Client) ensureValid(ctx context.Context, sess *Session) (credentials, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.accessToken == "" {
		return credentials{}, ErrNotAuthenticated
	}

	age := c.nowFunc().Sub(sess.tokenIssuedAt)
	if age >= sess.tokenLifetime-c.refreshMargin {
		c.log.Debug("access token due for refresh",
			"email", sess.email,
			"age", age,
			"lifetime", sess.tokenLifetime,
		)
		if err := c.refreshLocked(ctx, sess); err != nil {
			return credentials{}, err
		}
	}

	return credentials{accessToken: sess.accessToken, cookie: sess.cookie}, nil
}

func (c *Client) refreshLocked(ctx context.Context, sess *Session) error {
	resp, err := c.gateway.PostJSON(ctx, c.newRequest(sess, pathTokenRefresh, refreshRequest{
		RefreshToken: sess.refreshToken,
	}, sess.accessToken))
	if err != nil {
		// The server never saw the request, so the tokens may still be good.
		metrics.TokenRefreshesTotal.WithLabelValues("transport_error").Inc()
		return fmt.Errorf("refreshing access token: %w", err)
	}

	sess.setCookieLocked(resp.Cookie)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sess.clearTokensLocked()
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		c.log.Warn("refresh token rejected, session cleared; log in again to resume",
			"email", sess.email,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("%w: %w", ErrSessionExpired, &ServerError{
			Op:         "token/refresh",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		})
	}

	var body refreshResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.AccessToken == "" {
		reason := "response without access token"
		if err != nil {
			reason = "parsing response: " + err.Error()
		}
		metrics.TokenRefreshesTotal.WithLabelValues("server_error").Inc()
		return &ServerError{
			Op:         "token/refresh",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Reason:     reason,
		}
	}

	refreshToken := body.RefreshToken
	if refreshToken == "" {
		refreshToken = sess.refreshToken
	}
	sess.issueLocked(body.AccessToken, refreshToken, c.nowFunc())

	metrics.TokenRefreshesTotal.WithLabelValues("succeeded").Inc()
	c.log.Info("access token refreshed", "email", sess.email)

	return nil
}
