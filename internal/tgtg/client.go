// Package tgtg is a client for the surprise-bag marketplace's private mobile
// API: the email-confirmation login handshake, access token refresh, and
// item search.
package tgtg

import (
	"context"
	"log/slog"
	"time"
)

const (
	pathAuthByEmail     = "auth/v3/authByEmail"
	pathAuthByPollingID = "auth/v3/authByRequestPollingId"
	pathTokenRefresh    = "auth/v3/token/refresh"
	pathItems           = "item/v8/"

	// DefaultMaxPollAttempts bounds the confirmation poll loop.
	DefaultMaxPollAttempts = 24

	// DefaultPollInterval is the wait between two polls that returned 202.
	DefaultPollInterval = 5 * time.Second

	// DefaultRefreshMargin renews the access token this long before its
	// lifetime runs out.
	DefaultRefreshMargin = 60 * time.Second
)

// Searcher runs item searches on behalf of one authenticated session.
type Searcher interface {
	SearchItems(ctx context.Context, criteria *Criteria) (*ItemPage, error)
}

// Client drives the auth handshake, refresh policy and item queries against
// a Gateway. It holds no per-user state; every operation takes the Session
// it acts on.
type Client struct {
	gateway         Gateway
	log             *slog.Logger
	nowFunc         func() time.Time
	pollInterval    time.Duration
	maxPollAttempts int
	refreshMargin   time.Duration
	observer        func(HandshakeState)
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// WithPollInterval overrides the 5s wait between confirmation polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithMaxPollAttempts overrides the 24 attempt poll budget.
func WithMaxPollAttempts(n int) Option {
	return func(c *Client) {
		c.maxPollAttempts = n
	}
}

// WithRefreshMargin sets how long before expiry the access token is renewed.
func WithRefreshMargin(d time.Duration) Option {
	return func(c *Client) {
		c.refreshMargin = d
	}
}

// WithHandshakeObserver registers a callback invoked on every handshake
// state transition, e.g. to tell the user to check their mailbox.
func WithHandshakeObserver(f func(HandshakeState)) Option {
	return func(c *Client) {
		c.observer = f
	}
}

// NewClient creates a Client that talks through gw.
func NewClient(gw Gateway, opts ...Option) *Client {
	c := &Client{
		gateway:         gw,
		log:             slog.Default(),
		nowFunc:         time.Now,
		pollInterval:    DefaultPollInterval,
		maxPollAttempts: DefaultMaxPollAttempts,
		refreshMargin:   DefaultRefreshMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind returns a Searcher that runs every search on sess.
func (c *Client) Bind(sess *Session) *SessionClient {
	return &SessionClient{client: c, session: sess}
}

// SessionClient pairs a Client with the one Session it serves.
type SessionClient struct {
	client  *Client
	session *Session
}

// Session returns the bound session.
func (sc *SessionClient) Session() *Session {
	return sc.session
}

// Authenticate runs the email handshake on the bound session.
func (sc *SessionClient) Authenticate(ctx context.Context) error {
	return sc.client.Authenticate(ctx, sc.session)
}

// Relogin runs a fresh handshake and swaps its tokens into the bound session.
func (sc *SessionClient) Relogin(ctx context.Context) error {
	return sc.client.Relogin(ctx, sc.session)
}

// EnsureValid applies the refresh policy to the bound session.
func (sc *SessionClient) EnsureValid(ctx context.Context) error {
	return sc.client.EnsureValid(ctx, sc.session)
}

// SearchItems implements Searcher.
func (sc *SessionClient) SearchItems(ctx context.Context, criteria *Criteria) (*ItemPage, error) {
	return sc.client.SearchItems(ctx, sc.session, criteria)
}

// ExpiresAt returns when the bound session's access token will be renewed
// at the latest, or the zero time when unauthenticated.
func (sc *SessionClient) ExpiresAt() time.Time {
	return sc.session.Snapshot().ExpiresAt(sc.session.AccessTokenLifetime())
}

// newRequest builds a gateway request that carries sess's correlation id and
// anti-bot cookie. The caller must hold sess.mu.
func (c *Client) newRequest(sess *Session, path string, body any, token string) *Request {
	return &Request{
		Path:          path,
		Body:          body,
		AccessToken:   token,
		Cookie:        sess.cookieLocked(),
		CorrelationID: sess.correlationID,
	}
}
