package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

// SessionState exposes the live session without its lock. *tgtg.Session
// satisfies it.
type SessionState interface {
	Snapshot() tgtg.SessionSnapshot
	AccessTokenLifetime() time.Duration
}

// SessionRefresher applies the token refresh policy.
type SessionRefresher interface {
	EnsureValid(ctx context.Context) error
}

// SessionLogin re-runs the email handshake for the live session.
type SessionLogin interface {
	Relogin(ctx context.Context) error
}

// SessionHandler reports and maintains the marketplace session.
type SessionHandler struct {
	state     SessionState
	refresher SessionRefresher

	login    SessionLogin
	loginCtx context.Context
	log      *slog.Logger
	inFlight atomic.Bool
}

// SessionHandlerOption configures a SessionHandler.
type SessionHandlerOption func(*SessionHandler)

// WithLogin enables POST /api/v1/session/login. Handshakes run in the
// background under ctx, which should live as long as the server.
func WithLogin(ctx context.Context, l SessionLogin, log *slog.Logger) SessionHandlerOption {
	return func(h *SessionHandler) {
		h.login = l
		h.loginCtx = ctx
		h.log = log
	}
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(state SessionState, refresher SessionRefresher, opts ...SessionHandlerOption) *SessionHandler {
	h := &SessionHandler{state: state, refresher: refresher, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SessionOutput describes the session. Tokens are never returned.
type SessionOutput struct {
	Body struct {
		Email         string     `json:"email" doc:"Account email"`
		Authenticated bool       `json:"authenticated" doc:"Whether an access token is held"`
		UserID        string     `json:"user_id,omitempty" doc:"Marketplace user id"`
		TokenIssuedAt *time.Time `json:"token_issued_at,omitempty" doc:"When the current token was issued"`
		ExpiresAt     *time.Time `json:"expires_at,omitempty" doc:"When the token is considered expired"`
	}
}

func (h *SessionHandler) describe() *SessionOutput {
	snap := h.state.Snapshot()

	out := &SessionOutput{}
	out.Body.Email = snap.Email
	out.Body.Authenticated = snap.Authenticated()
	out.Body.UserID = snap.UserID
	if !snap.TokenIssuedAt.IsZero() {
		issued := snap.TokenIssuedAt
		expires := snap.ExpiresAt(h.state.AccessTokenLifetime())
		out.Body.TokenIssuedAt = &issued
		out.Body.ExpiresAt = &expires
	}
	return out
}

// GetSession returns the session state.
func (h *SessionHandler) GetSession(_ context.Context, _ *struct{}) (*SessionOutput, error) {
	return h.describe(), nil
}

// RefreshSession renews the access token if it is due and returns the
// resulting state.
func (h *SessionHandler) RefreshSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	if err := h.refresher.EnsureValid(ctx); err != nil {
		return nil, upstreamError(err)
	}
	return h.describe(), nil
}

// LoginOutput acknowledges a login request.
type LoginOutput struct {
	Status int
	Body   struct {
		Message string `json:"message" doc:"What happens next"`
	}
}

// Login starts a new email handshake in the background. The current tokens
// stay in use until the new login is confirmed.
func (h *SessionHandler) Login(_ context.Context, _ *struct{}) (*LoginOutput, error) {
	if !h.inFlight.CompareAndSwap(false, true) {
		return nil, huma.Error409Conflict("a login is already waiting for confirmation")
	}

	email := h.state.Snapshot().Email
	go func() {
		defer h.inFlight.Store(false)
		if err := h.login.Relogin(h.loginCtx); err != nil {
			h.log.Error("re-login failed", "email", email, "error", err)
			return
		}
		h.log.Info("re-login confirmed", "email", email)
	}()

	out := &LoginOutput{Status: http.StatusAccepted}
	out.Body.Message = "login email sent to " + email + "; open the link to confirm"
	return out, nil
}

// RegisterSessionRoutes registers session endpoints with the Huma API.
func RegisterSessionRoutes(api huma.API, h *SessionHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session state",
		Tags:        []string{"session"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/refresh",
		Summary:     "Refresh the access token",
		Description: "Applies the refresh policy: the token is renewed only when it is close to expiry.",
		Tags:        []string{"session"},
		Errors:      []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	}, h.RefreshSession)

	if h.login == nil {
		return
	}
	huma.Register(api, huma.Operation{
		OperationID:   "login-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/session/login",
		Summary:       "Log in again",
		Description:   "Starts a new email handshake in the background, e.g. after the refresh token was rejected.",
		Tags:          []string{"session"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusConflict},
	}, h.Login)
}
