package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

// upstreamError maps a marketplace client error onto an HTTP error.
// Session problems are 503 because they need an operator to log in again.
func upstreamError(err error) error {
	var qe *tgtg.QueryError
	switch {
	case errors.Is(err, tgtg.ErrNotAuthenticated), errors.Is(err, tgtg.ErrSessionExpired):
		return huma.Error503ServiceUnavailable("session not authenticated, POST /api/v1/session/login to log in again: " + err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("tgtg API timeout: " + err.Error())
	case errors.As(err, &qe):
		return huma.Error502BadGateway("tgtg API error: " + qe.Error())
	default:
		return huma.Error502BadGateway("tgtg API error: " + err.Error())
	}
}
