package client

import (
	"context"
	"time"
)

// SessionStatus mirrors GET /api/v1/session.
type SessionStatus struct {
	Email         string     `json:"email"`
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	TokenIssuedAt *time.Time `json:"token_issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Session returns the server's session state.
func (c *Client) Session(ctx context.Context) (*SessionStatus, error) {
	var s SessionStatus
	if err := c.get(ctx, "/api/v1/session", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RefreshSession asks the server to renew its token if due.
func (c *Client) RefreshSession(ctx context.Context) (*SessionStatus, error) {
	var s SessionStatus
	if err := c.post(ctx, "/api/v1/session/refresh", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Login asks the server to start a new email handshake. It returns the
// server's instructions; confirmation happens out of band.
func (c *Client) Login(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/v1/session/login", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
