package tgtg_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

const (
	pathAuthByEmail = "auth/v3/authByEmail"
	pathPoll        = "auth/v3/authByRequestPollingId"
	pathRefresh     = "auth/v3/token/refresh"
	pathItems       = "item/v8/"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// routeFunc answers the n-th (1-based) call to a path.
type routeFunc func(w http.ResponseWriter, r *http.Request, n int)

// platform is a scripted stand-in for the marketplace API.
type platform struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	routes  map[string]routeFunc
	hits    map[string]int
	bodies  map[string][]byte
	headers map[string]http.Header
}

func newPlatform(t *testing.T) *platform {
	t.Helper()

	p := &platform{
		t:       t,
		routes:  make(map[string]routeFunc),
		hits:    make(map[string]int),
		bodies:  make(map[string][]byte),
		headers: make(map[string]http.Header),
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *platform) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	body, _ := io.ReadAll(r.Body)

	p.mu.Lock()
	p.hits[path]++
	n := p.hits[path]
	p.bodies[path] = body
	p.headers[path] = r.Header.Clone()
	route := p.routes[path]
	p.mu.Unlock()

	if route == nil {
		p.t.Errorf("unexpected request to %s", path)
		http.NotFound(w, r)
		return
	}
	route(w, r, n)
}

func (p *platform) handle(path string, fn routeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[path] = fn
}

func (p *platform) hitCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *platform) totalHits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.hits {
		total += n
	}
	return total
}

func (p *platform) lastBody(path string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out map[string]any
	if err := json.Unmarshal(p.bodies[path], &out); err != nil {
		p.t.Fatalf("decoding last %s body: %v", path, err)
	}
	return out
}

func (p *platform) lastHeader(path string) http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers[path]
}

func (p *platform) gateway(opts ...tgtg.GatewayOption) *tgtg.HTTPGateway {
	base := []tgtg.GatewayOption{
		tgtg.WithBaseURL(p.srv.URL + "/api"),
		tgtg.WithRetry(0, 0, 0),
		tgtg.WithGatewayLogger(quietLogger()),
	}
	return tgtg.NewHTTPGateway(append(base, opts...)...)
}

func (p *platform) client(opts ...tgtg.Option) *tgtg.Client {
	base := []tgtg.Option{
		tgtg.WithLogger(quietLogger()),
		tgtg.WithPollInterval(0),
	}
	return tgtg.NewClient(p.gateway(), append(base, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func respond(status int, body string) routeFunc {
	return func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(w, status, body)
	}
}

func respondWait(pollingID string) routeFunc {
	return respond(http.StatusOK, `{"state":"WAIT","polling_id":"`+pollingID+`"}`)
}

func tokensBody(access, refresh, userID string) string {
	return `{"access_token":"` + access + `","refresh_token":"` + refresh +
		`","startup_data":{"user":{"user_id":` + userID + `}}}`
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// loggedIn runs a one-poll handshake so the session holds access-1/refresh-1
// issued at clk.Now().
func loggedIn(t *testing.T, p *platform, clk *clock, opts ...tgtg.Option) (*tgtg.Client, *tgtg.Session) {
	t.Helper()

	p.handle(pathAuthByEmail, respondWait("poll-1"))
	p.handle(pathPoll, respond(http.StatusOK, tokensBody("access-1", "refresh-1", `"42"`)))

	c := p.client(append([]tgtg.Option{tgtg.WithNowFunc(clk.Now)}, opts...)...)
	sess := tgtg.NewSession("user@example.com")
	if err := c.Authenticate(t.Context(), sess); err != nil {
		t.Fatalf("authenticating: %v", err)
	}
	return c, sess
}
