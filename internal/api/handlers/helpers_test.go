package handlers_test

import (
	"context"
	"time"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

type fakeSession struct {
	snap     tgtg.SessionSnapshot
	lifetime time.Duration
}

func (f *fakeSession) Snapshot() tgtg.SessionSnapshot      { return f.snap }
func (f *fakeSession) AccessTokenLifetime() time.Duration { return f.lifetime }

func loggedInSession(issued time.Time) *fakeSession {
	return &fakeSession{
		snap: tgtg.SessionSnapshot{
			Email:         "user@example.com",
			UserID:        "42",
			AccessToken:   "access-1",
			RefreshToken:  "refresh-1",
			TokenIssuedAt: issued,
		},
		lifetime: 4 * time.Hour,
	}
}

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) EnsureValid(ctx context.Context) error { return f(ctx) }

type loginFunc func(ctx context.Context) error

func (f loginFunc) Relogin(ctx context.Context) error { return f(ctx) }

type runnerFunc func(ctx context.Context) (*watch.CycleResult, error)

func (f runnerFunc) RunOnce(ctx context.Context) (*watch.CycleResult, error) { return f(ctx) }
