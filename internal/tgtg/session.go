package tgtg

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDeviceType identifies the emulated client platform.
	DefaultDeviceType = "ANDROID"

	// DefaultAccessTokenLifetime is how long an issued access token is
	// trusted before the refresh policy renews it.
	DefaultAccessTokenLifetime = 24 * time.Hour
)

// Session holds the credentials and tokens of one logical user session.
// It has no behavior of its own: Client.Authenticate and Client.EnsureValid
// are its writers, and both hold mu for the whole read-modify-write,
// including the network round trip. Client.Relogin writes only the result of
// a finished handshake.
type Session struct {
	email         string
	deviceType    string
	correlationID string
	tokenLifetime time.Duration

	mu            sync.Mutex
	accessToken   string
	refreshToken  string
	userID        string
	tokenIssuedAt time.Time
	cookie        string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDeviceType overrides the device type sent to the auth endpoints.
func WithDeviceType(d string) SessionOption {
	return func(s *Session) {
		s.deviceType = d
	}
}

// WithAccessTokenLifetime overrides the 24h access token lifetime.
func WithAccessTokenLifetime(d time.Duration) SessionOption {
	return func(s *Session) {
		s.tokenLifetime = d
	}
}

// NewSession creates an unauthenticated session for email.
func NewSession(email string, opts ...SessionOption) *Session {
	s := &Session{
		email:         email,
		deviceType:    DefaultDeviceType,
		correlationID: uuid.NewString(),
		tokenLifetime: DefaultAccessTokenLifetime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Email returns the session's email address.
func (s *Session) Email() string { return s.email }

// DeviceType returns the device type sent to the auth endpoints.
func (s *Session) DeviceType() string { return s.deviceType }

// CorrelationID returns the id sent as x-correlation-id on every request.
func (s *Session) CorrelationID() string { return s.correlationID }

// AccessTokenLifetime returns the fixed lifetime used to compute expiry.
func (s *Session) AccessTokenLifetime() time.Duration { return s.tokenLifetime }

// SessionSnapshot is a point-in-time copy of a Session's mutable state.
type SessionSnapshot struct {
	Email         string
	UserID        string
	AccessToken   string
	RefreshToken  string
	TokenIssuedAt time.Time
	Cookie        string
}

// Authenticated reports whether the snapshot holds an access token.
func (s SessionSnapshot) Authenticated() bool {
	return s.AccessToken != ""
}

// ExpiresAt returns when the access token stops being trusted, or the zero
// time if there is no token.
func (s SessionSnapshot) ExpiresAt(lifetime time.Duration) time.Time {
	if s.TokenIssuedAt.IsZero() {
		return time.Time{}
	}
	return s.TokenIssuedAt.Add(lifetime)
}

// Snapshot returns a copy of the session's current state. It blocks while a
// handshake or refresh is in flight.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		Email:         s.email,
		UserID:        s.userID,
		AccessToken:   s.accessToken,
		RefreshToken:  s.refreshToken,
		TokenIssuedAt: s.tokenIssuedAt,
		Cookie:        s.cookie,
	}
}

// issueLocked stores a freshly issued token pair. Access and refresh tokens
// always move together with tokenIssuedAt.
func (s *Session) issueLocked(access, refresh string, at time.Time) {
	s.accessToken = access
	s.refreshToken = refresh
	s.tokenIssuedAt = at
}

// adoptFrom copies the credentials of an authenticated session into s.
func (s *Session) adoptFrom(from SessionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueLocked(from.AccessToken, from.RefreshToken, from.TokenIssuedAt)
	s.userID = from.UserID
	s.setCookieLocked(from.Cookie)
}

func (s *Session) clearTokensLocked() {
	s.accessToken = ""
	s.refreshToken = ""
	s.tokenIssuedAt = time.Time{}
}

func (s *Session) cookieLocked() string {
	return s.cookie
}

func (s *Session) setCookieLocked(c string) {
	if c != "" {
		s.cookie = c
	}
}

func (s *Session) setCookie(c string) {
	if c == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCookieLocked(c)
}
