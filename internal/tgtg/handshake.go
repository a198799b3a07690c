package tgtg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
)

// HandshakeState is a step of the email login handshake.
type HandshakeState int

// Handshake states. Succeeded and Failed are terminal.
const (
	StateInitiating HandshakeState = iota
	StatePolling
	StateSucceeded
	StateFailed
)

// String implements fmt.Stringer.
func (s HandshakeState) String() string {
	switch s {
	case StateInitiating:
		return "initiating"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("HandshakeState(%d)", int(s))
	}
}

// authByEmail response states.
const (
	authStateWait  = "WAIT"
	authStateTerms = "TERMS"
)

type authByEmailRequest struct {
	DeviceType string `json:"device_type"`
	Email      string `json:"email"`
}

type authByEmailResponse struct {
	State string `json:"state"`
	// PollingID is only present when State is WAIT.
	PollingID string `json:"polling_id,omitempty"`
}

type pollRequest struct {
	DeviceType       string `json:"device_type"`
	Email            string `json:"email"`
	RequestPollingID string `json:"request_polling_id"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	StartupData  struct {
		User struct {
			UserID flexID `json:"user_id"`
		} `json:"user"`
	} `json:"startup_data"`
}

// flexID accepts an identifier encoded as either a JSON string or number.
type flexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// Authenticate runs the email login handshake on sess: it asks the platform
// to email a confirmation link, then polls until the user clicks it, the poll
// budget runs out, or the server answers with something unexpected. On
// success the session holds fresh tokens and the user id.
//
// The poll wait honors ctx; cancellation returns the context's error rather
// than ErrPollTimeout. Only one handshake or refresh runs per session at a
// time; concurrent callers block.
func (c *Client) Authenticate(ctx context.Context, sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	h := &handshake{client: c, sess: sess}
	h.transition(StateInitiating)

	for h.state != StateSucceeded && h.state != StateFailed {
		switch h.state {
		case StateInitiating:
			h.initiate(ctx)
		case StatePolling:
			h.poll(ctx)
		}
	}

	metrics.HandshakesTotal.WithLabelValues(h.result).Inc()
	return h.err
}

// Relogin runs a new handshake for sess's email without holding sess while
// it polls, so readers of a live session are not stalled for the minutes a
// confirmation can take. On success the new tokens replace sess's; on
// failure sess is left as it was.
func (c *Client) Relogin(ctx context.Context, sess *Session) error {
	fresh := &Session{
		email:         sess.email,
		deviceType:    sess.deviceType,
		correlationID: sess.correlationID,
		tokenLifetime: sess.tokenLifetime,
		cookie:        sess.Snapshot().Cookie,
	}
	if err := c.Authenticate(ctx, fresh); err != nil {
		return err
	}

	snap := fresh.Snapshot()
	if !snap.Authenticated() {
		return nil
	}
	sess.adoptFrom(snap)
	return nil
}

type handshake struct {
	client *Client
	sess   *Session

	state     HandshakeState
	result    string
	err       error
	pollingID string
	attempts  int
	pacer     *rate.Limiter
}

func (h *handshake) transition(s HandshakeState) {
	h.state = s
	if h.client.observer != nil {
		h.client.observer(s)
	}
}

func (h *handshake) succeed(result string) {
	h.result = result
	h.transition(StateSucceeded)
}

func (h *handshake) fail(result string, err error) {
	h.result = result
	h.err = err
	h.client.log.Warn("login handshake failed",
		"email", h.sess.email,
		"result", result,
		"attempts", h.attempts,
		"error", err,
	)
	h.transition(StateFailed)
}

func (h *handshake) initiate(ctx context.Context) {
	c := h.client

	req := c.newRequest(h.sess, pathAuthByEmail, authByEmailRequest{
		DeviceType: h.sess.deviceType,
		Email:      h.sess.email,
	}, "")
	// Each attempt mails the user, so a failed one is not repeated here.
	req.NoRetry = true

	resp, err := c.gateway.PostJSON(ctx, req)
	if err != nil {
		h.fail("transport_error", fmt.Errorf("requesting login email: %w", err))
		return
	}

	if resp.StatusCode != http.StatusOK {
		h.fail("server_error", &ServerError{
			Op:         "authByEmail",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		})
		return
	}

	var body authByEmailResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		h.fail("server_error", &ServerError{
			Op:         "authByEmail",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Reason:     "parsing response: " + err.Error(),
		})
		return
	}

	c.log.Debug("authByEmail response", "state", body.State)

	switch body.State {
	case authStateTerms:
		h.fail("not_linked", ErrNotLinked)
	case authStateWait:
		if body.PollingID == "" {
			h.fail("server_error", &ServerError{
				Op:         "authByEmail",
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				Reason:     "WAIT without polling_id",
			})
			return
		}
		h.sess.setCookieLocked(resp.Cookie)
		h.pollingID = body.PollingID
		// The first poll goes out at once.
		h.pacer = rate.NewLimiter(rate.Every(c.pollInterval), 1)
		c.log.Info("login email sent, waiting for confirmation",
			"email", h.sess.email,
			"max_attempts", c.maxPollAttempts,
			"interval", c.pollInterval,
		)
		h.transition(StatePolling)
	default:
		// Unknown states are accepted as-is so a server-side addition does
		// not break login; nothing more is required of the client.
		h.sess.setCookieLocked(resp.Cookie)
		c.log.Warn("unrecognized authByEmail state, nothing to do", "state", body.State)
		h.succeed("no_action")
	}
}

func (h *handshake) poll(ctx context.Context) {
	c := h.client

	if h.attempts >= c.maxPollAttempts {
		h.fail("poll_timeout", fmt.Errorf("%w (%d attempts)", ErrPollTimeout, h.attempts))
		return
	}

	if err := h.pacer.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			// The limiter refuses early when the deadline would pass before
			// the next poll slot.
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		h.fail("canceled", fmt.Errorf("waiting for email confirmation: %w", err))
		return
	}

	h.attempts++

	resp, err := c.gateway.PostJSON(ctx, c.newRequest(h.sess, pathAuthByPollingID, pollRequest{
		DeviceType:       h.sess.deviceType,
		Email:            h.sess.email,
		RequestPollingID: h.pollingID,
	}, ""))
	if err != nil {
		metrics.PollAttemptsTotal.WithLabelValues("error").Inc()
		h.fail("transport_error", fmt.Errorf("polling for confirmation: %w", err))
		return
	}

	h.sess.setCookieLocked(resp.Cookie)

	switch resp.StatusCode {
	case http.StatusAccepted:
		metrics.PollAttemptsTotal.WithLabelValues("202").Inc()
		c.log.Info("check your mailbox",
			"attempt", h.attempts,
			"max_attempts", c.maxPollAttempts,
		)
		h.restartPace()
	case http.StatusOK:
		metrics.PollAttemptsTotal.WithLabelValues("200").Inc()
		h.acceptTokens(resp)
	default:
		metrics.PollAttemptsTotal.WithLabelValues("other").Inc()
		h.fail("server_error", &ServerError{
			Op:         "authByRequestPollingId",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		})
	}
}

// restartPace makes the next poll wait a full interval from now, however
// long the previous 202 took to arrive.
func (h *handshake) restartPace() {
	h.pacer = rate.NewLimiter(rate.Every(h.client.pollInterval), 1)
	h.pacer.Allow()
}

func (h *handshake) acceptTokens(resp *Response) {
	var tok tokenResponse
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		h.fail("server_error", &ServerError{
			Op:         "authByRequestPollingId",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Reason:     "parsing token response: " + err.Error(),
		})
		return
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		h.fail("server_error", &ServerError{
			Op:         "authByRequestPollingId",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Reason:     "token response without access or refresh token",
		})
		return
	}

	h.sess.issueLocked(tok.AccessToken, tok.RefreshToken, h.client.nowFunc())
	h.sess.userID = string(tok.StartupData.User.UserID)

	h.client.log.Info("login confirmed",
		"email", h.sess.email,
		"user_id", h.sess.userID,
		"attempts", h.attempts,
	)
	h.succeed("succeeded")
}
