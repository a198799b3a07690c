package tgtg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
)

// Position is a point on the map in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Criteria is the item search request body.
type Criteria struct {
	Origin         Position `json:"origin"`
	Radius         int      `json:"radius"`
	PageSize       int      `json:"page_size"`
	PageNumber     int      `json:"page_number"`
	Discover       bool     `json:"discover"`
	FavoritesOnly  bool     `json:"favorites_only"`
	ItemCategories []string `json:"item_categories"`
	DietCategories []string `json:"diet_categories"`
	PickupEarliest []string `json:"pickup_earliest"`
	PickupLatest   []string `json:"pickup_latest"`
	SearchPhrase   string   `json:"search_phrase"`
	WithStockOnly  bool     `json:"with_stock_only"`
	HiddenOnly     bool     `json:"hidden_only"`
	WeCareOnly     bool     `json:"we_care_only"`
}

// ItemPage is one page of search results.
type ItemPage struct {
	Items []Item `json:"items"`
}

// Item is a surprise bag listing as seen from the search endpoint.
type Item struct {
	Item           ItemDetails     `json:"item"`
	Store          Store           `json:"store"`
	DisplayName    string          `json:"display_name"`
	PickupInterval *PickupInterval `json:"pickup_interval,omitempty"`
	ItemsAvailable int             `json:"items_available"`
	Distance       float64         `json:"distance"`
	Favorite       bool            `json:"favorite"`
	InSalesWindow  bool            `json:"in_sales_window"`
}

// ID returns the listing's item id.
func (i *Item) ID() string {
	return i.Item.ItemID
}

// ItemDetails describes the bag itself.
type ItemDetails struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"item_price"`
}

// Price is an amount in minor currency units.
type Price struct {
	Code       string `json:"code"`
	MinorUnits int64  `json:"minor_units"`
	Decimals   int    `json:"decimals"`
}

// Amount returns the price in major units, e.g. 3.99.
func (p Price) Amount() float64 {
	return float64(p.MinorUnits) / math.Pow10(p.Decimals)
}

// String formats the price as "3.99 EUR".
func (p Price) String() string {
	return strconv.FormatFloat(p.Amount(), 'f', p.Decimals, 64) + " " + p.Code
}

// Store is the shop offering a bag.
type Store struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	Branch    string `json:"branch"`
}

// PickupInterval is the window in which a bag can be collected. A bound
// the platform sends in an unknown format decodes as the zero time.
type PickupInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var pickupLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes the bounds as strings and parses them leniently, so
// one odd timestamp does not fail the whole page.
func (p *PickupInterval) UnmarshalJSON(b []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Start = parsePickupTime(raw.Start)
	p.End = parsePickupTime(raw.End)
	return nil
}

// Valid reports whether both bounds were understood.
func (p *PickupInterval) Valid() bool {
	return p != nil && !p.Start.IsZero() && !p.End.IsZero()
}

func parsePickupTime(s string) time.Time {
	for _, layout := range pickupLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// SearchItems runs one item search on sess. The refresh policy runs first
// and its error is returned unchanged. Any non-2xx answer from the search
// endpoint is a *QueryError; retrying is the caller's call.
func (c *Client) SearchItems(ctx context.Context, sess *Session, criteria *Criteria) (*ItemPage, error) {
	if criteria == nil {
		return nil, errors.New("search criteria is required")
	}

	creds, err := c.ensureValid(ctx, sess)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.gateway.PostJSON(ctx, &Request{
		Path:          pathItems,
		Body:          criteria,
		AccessToken:   creds.accessToken,
		Cookie:        creds.cookie,
		CorrelationID: sess.correlationID,
	})
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("searching items: %w", err)
	}

	sess.setCookie(resp.Cookie)
	metrics.SearchRequestsTotal.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &QueryError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var page ItemPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("decoding item page: %w", err)
	}

	c.log.Debug("item search complete",
		"page", criteria.PageNumber,
		"items", len(page.Items),
	)

	return &page, nil
}
