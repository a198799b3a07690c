// Package domain defines the core business types for the surprise bag watcher.
package domain

import (
	"time"
)

// StockSnapshot is the last known stock level of one surprise bag.
type StockSnapshot struct {
	ID             string     `json:"id"`
	ItemID         string     `json:"item_id"`
	SearchName     string     `json:"search_name"`
	StoreName      string     `json:"store_name"`
	DisplayName    string     `json:"display_name"`
	ItemsAvailable int        `json:"items_available"`
	Price          float64    `json:"price"`
	Currency       string     `json:"currency"`
	PickupStart    *time.Time `json:"pickup_start,omitempty"`
	PickupEnd      *time.Time `json:"pickup_end,omitempty"`
	LastRestockAt  *time.Time `json:"last_restock_at,omitempty"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// InStock reports whether at least one bag is left.
func (s *StockSnapshot) InStock() bool {
	return s.ItemsAvailable > 0
}

// RestockAlert is raised when a bag goes from sold out (or never seen) to
// available.
type RestockAlert struct {
	Snapshot StockSnapshot `json:"snapshot"`
	// Previous is the stock level before the restock; -1 when the bag had
	// never been seen.
	Previous int       `json:"previous"`
	SeenAt   time.Time `json:"seen_at"`
}
