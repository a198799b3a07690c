package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

// SearchHandler runs item searches through the live session.
type SearchHandler struct {
	searcher tgtg.Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(s tgtg.Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Latitude       float64  `json:"latitude" minimum:"-90" maximum:"90" doc:"Origin latitude" example:"52.3676"`
		Longitude      float64  `json:"longitude" minimum:"-180" maximum:"180" doc:"Origin longitude" example:"4.9041"`
		Radius         int      `json:"radius,omitempty" minimum:"1" maximum:"30" doc:"Search radius in km (default 5)"`
		PageSize       int      `json:"page_size,omitempty" minimum:"1" maximum:"400" doc:"Results per page (default 20)"`
		PageNumber     int      `json:"page_number,omitempty" minimum:"1" doc:"Page to fetch (default 1)"`
		SearchPhrase   string   `json:"search_phrase,omitempty" doc:"Free text filter"`
		ItemCategories []string `json:"item_categories,omitempty" doc:"Item category filter" example:"BAKED_GOODS"`
		DietCategories []string `json:"diet_categories,omitempty" doc:"Diet category filter" example:"VEGETARIAN"`
		FavoritesOnly  bool     `json:"favorites_only,omitempty" doc:"Only favorited stores"`
		WithStockOnly  bool     `json:"with_stock_only,omitempty" doc:"Only bags currently in stock"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body struct {
		Items []tgtg.Item `json:"items" doc:"Bags on the requested page"`
		Count int         `json:"count" doc:"Number of bags returned"`
	}
}

// Criteria converts the request body into search criteria with defaults.
func (in *SearchInput) Criteria() *tgtg.Criteria {
	b := &in.Body
	c := &tgtg.Criteria{
		Origin:         tgtg.Position{Latitude: b.Latitude, Longitude: b.Longitude},
		Radius:         b.Radius,
		PageSize:       b.PageSize,
		PageNumber:     b.PageNumber,
		SearchPhrase:   b.SearchPhrase,
		ItemCategories: b.ItemCategories,
		DietCategories: b.DietCategories,
		FavoritesOnly:  b.FavoritesOnly,
		WithStockOnly:  b.WithStockOnly,
	}
	if c.Radius == 0 {
		c.Radius = 5
	}
	if c.PageSize == 0 {
		c.PageSize = 20
	}
	if c.PageNumber == 0 {
		c.PageNumber = 1
	}
	return c
}

// Search fetches one page of bags around the given origin.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	page, err := h.searcher.SearchItems(ctx, input.Criteria())
	if err != nil {
		return nil, upstreamError(err)
	}

	out := &SearchOutput{}
	out.Body.Items = page.Items
	if out.Body.Items == nil {
		out.Body.Items = []tgtg.Item{}
	}
	out.Body.Count = len(page.Items)
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-items",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search surprise bags",
		Description: "Runs one item search through the authenticated session, refreshing its token if due.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	}, h.Search)
}
