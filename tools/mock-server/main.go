// Package main implements a mock surprise-bag marketplace API for local
// development. It walks the email login handshake without sending mail,
// issues and refreshes tokens, and serves generated item pages so the CLI
// and watcher can run end to end against localhost.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

const (
	// unlinkedDomain emails get the TERMS answer, as for an address with no
	// account yet.
	unlinkedDomain = "@unlinked.test"

	cookieName = "datadome"
)

type position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchRequest struct {
	Origin        position `json:"origin"`
	Radius        int      `json:"radius"`
	PageSize      int      `json:"page_size"`
	PageNumber    int      `json:"page_number"`
	SearchPhrase  string   `json:"search_phrase"`
	WithStockOnly bool     `json:"with_stock_only"`
}

type price struct {
	Code       string `json:"code"`
	MinorUnits int64  `json:"minor_units"`
	Decimals   int    `json:"decimals"`
}

type item struct {
	Item struct {
		ItemID string `json:"item_id"`
		Name   string `json:"name"`
		Price  price  `json:"item_price"`
	} `json:"item"`
	Store struct {
		StoreID   string `json:"store_id"`
		StoreName string `json:"store_name"`
		Branch    string `json:"branch"`
	} `json:"store"`
	DisplayName    string `json:"display_name"`
	PickupInterval *struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"pickup_interval,omitempty"`
	ItemsAvailable int     `json:"items_available"`
	Distance       float64 `json:"distance"`
	InSalesWindow  bool    `json:"in_sales_window"`
}

// mockServer holds the handshake and token state shared across requests.
type mockServer struct {
	log          *slog.Logger
	confirmAfter int
	items        []item

	mu       sync.Mutex
	polls    map[string]int    // polling id -> polls answered
	access   map[string]string // access token -> email
	refresh  map[string]string // refresh token -> email
	nextUser int
}

func newMockServer(log *slog.Logger, confirmAfter, itemCount int, now time.Time) *mockServer {
	return &mockServer{
		log:          log,
		confirmAfter: confirmAfter,
		items:        generateItems(itemCount, now),
		polls:        make(map[string]int),
		access:       make(map[string]string),
		refresh:      make(map[string]string),
		nextUser:     1000,
	}
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	confirmAfter := flag.Int("confirm-after", 2, "polls answered 202 before the login is confirmed")
	itemCount := flag.Int("items", 45, "number of generated items")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newMockServer(logger, *confirmAfter, *itemCount, time.Now())

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock marketplace server",
		"addr", addr,
		"base_url", fmt.Sprintf("http://localhost:%d/api/", *port),
		"items", len(m.items),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, m.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (m *mockServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/v3/authByEmail", m.authByEmail)
	mux.HandleFunc("POST /api/auth/v3/authByRequestPollingId", m.pollLogin)
	mux.HandleFunc("POST /api/auth/v3/token/refresh", m.refreshToken)
	mux.HandleFunc("POST /api/item/v8/", m.searchItems)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (m *mockServer) authByEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	if strings.HasSuffix(req.Email, unlinkedDomain) {
		writeJSON(w, r, http.StatusOK, map[string]string{"state": "TERMS"})
		m.log.Info("unlinked email", "email", req.Email)
		return
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.polls[id] = 0
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: uuid.NewString(), Path: "/"})
	writeJSON(w, r, http.StatusOK, map[string]string{"state": "WAIT", "polling_id": id})
	m.log.Info("login email sent", "email", req.Email, "polling_id", id)
}

func (m *mockServer) pollLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email            string `json:"email"`
		RequestPollingID string `json:"request_polling_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	m.mu.Lock()
	n, ok := m.polls[req.RequestPollingID]
	if !ok {
		m.mu.Unlock()
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "unknown polling id"})
		return
	}
	if n < m.confirmAfter {
		m.polls[req.RequestPollingID] = n + 1
		m.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		return
	}
	delete(m.polls, req.RequestPollingID)
	access, refresh := m.issueLocked(req.Email)
	m.nextUser++
	userID := m.nextUser
	m.mu.Unlock()

	writeJSON(w, r, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"startup_data": map[string]any{
			"user": map[string]any{"user_id": userID},
		},
	})
	m.log.Info("login confirmed", "email", req.Email, "user_id", userID)
}

func (m *mockServer) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	m.mu.Lock()
	email, ok := m.refresh[req.RefreshToken]
	if !ok {
		m.mu.Unlock()
		writeJSON(w, r, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}
	delete(m.refresh, req.RefreshToken)
	access, refresh := m.issueLocked(email)
	m.mu.Unlock()

	writeJSON(w, r, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
	m.log.Info("token refreshed", "email", email)
}

func (m *mockServer) issueLocked(email string) (access, refresh string) {
	access = "mock-access-" + uuid.NewString()
	refresh = "mock-refresh-" + uuid.NewString()
	m.access[access] = email
	m.refresh[refresh] = email
	return access, refresh
}

func (m *mockServer) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok = m.access[token]
	return ok
}

func (m *mockServer) searchItems(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		writeJSON(w, r, http.StatusUnauthorized, map[string]string{"error": "invalid access token"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageNumber < 1 {
		req.PageNumber = 1
	}

	phrase := strings.ToLower(req.SearchPhrase)
	var matched []item
	for i := range m.items {
		it := m.items[i]
		if req.WithStockOnly && it.ItemsAvailable == 0 {
			continue
		}
		if req.Radius > 0 && it.Distance > float64(req.Radius) {
			continue
		}
		if phrase != "" && !strings.Contains(strings.ToLower(it.DisplayName), phrase) {
			continue
		}
		matched = append(matched, it)
	}

	start := (req.PageNumber - 1) * req.PageSize
	page := []item{}
	if start < len(matched) {
		page = matched[start:min(start+req.PageSize, len(matched))]
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"items": page})
	m.log.Info("search",
		"phrase", phrase,
		"page", req.PageNumber,
		"matched", len(matched),
		"returned", len(page),
	)
}

var storeNames = []string{
	"Corner Bakery", "Sushi Bar", "Green Grocer", "Pasta Fresca", "Bean There Cafe",
	"Daily Deli", "Noodle House", "The Butcher", "Fresh Market", "Pizza Piazza",
}

// generateItems builds a deterministic catalog: every third item is sold
// out and distances grow by 0.3 km per item.
func generateItems(n int, now time.Time) []item {
	items := make([]item, 0, n)
	day := now.Truncate(24 * time.Hour)
	for i := range n {
		var it item
		name := storeNames[i%len(storeNames)]
		it.Item.ItemID = fmt.Sprintf("%d", 100000+i)
		it.Item.Name = "Surprise Bag"
		it.Item.Price = price{Code: "EUR", MinorUnits: int64(299 + (i%5)*100), Decimals: 2}
		it.Store.StoreID = fmt.Sprintf("%d", 5000+i)
		it.Store.StoreName = name
		it.Store.Branch = fmt.Sprintf("Branch %d", i/len(storeNames)+1)
		it.DisplayName = fmt.Sprintf("%s (%s)", name, it.Store.Branch)
		if i%3 != 0 {
			it.ItemsAvailable = i%4 + 1
		}
		it.Distance = 0.3 * float64(i+1)
		it.InSalesWindow = true

		start := day.Add(time.Duration(17+i%4) * time.Hour)
		it.PickupInterval = &struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		}{Start: start, End: start.Add(30 * time.Minute)}

		items = append(items, it)
	}
	return items
}

// writeJSON encodes v, gzipped when the client asked for it as the mobile
// app does.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.WriteHeader(status)
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(v)
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(status)
	gz := gzip.NewWriter(w)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(gz).Encode(v)
	//nolint:errcheck,gosec // best-effort close in mock server
	gz.Close()
}
