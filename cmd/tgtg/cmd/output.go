package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printItemTable(w io.Writer, items []tgtg.Item) error {
	table := tablewriter.NewWriter(w)
	table.Header("Item", "Store", "Available", "Price", "Pickup", "Distance")

	for i := range items {
		it := &items[i]
		var start, end *time.Time
		if it.PickupInterval.Valid() {
			start, end = &it.PickupInterval.Start, &it.PickupInterval.End
		}
		if err := table.Append([]string{
			it.ID(),
			truncate(itemName(it), 40),
			strconv.Itoa(it.ItemsAvailable),
			it.Item.Price.String(),
			formatPickup(start, end),
			fmt.Sprintf("%.1f km", it.Distance),
		}); err != nil {
			return fmt.Errorf("adding table row: %w", err)
		}
	}
	return table.Render()
}

func printSnapshotTable(w io.Writer, snaps []domain.StockSnapshot) error {
	table := tablewriter.NewWriter(w)
	table.Header("Item", "Name", "Search", "Available", "Price", "Pickup", "Last Restock")

	for i := range snaps {
		s := &snaps[i]
		if err := table.Append([]string{
			s.ItemID,
			truncate(s.DisplayName, 40),
			s.SearchName,
			strconv.Itoa(s.ItemsAvailable),
			fmt.Sprintf("%.2f %s", s.Price, s.Currency),
			formatPickup(s.PickupStart, s.PickupEnd),
			formatOptionalTime(s.LastRestockAt),
		}); err != nil {
			return fmt.Errorf("adding table row: %w", err)
		}
	}
	return table.Render()
}

func itemName(it *tgtg.Item) string {
	if it.DisplayName != "" {
		return it.DisplayName
	}
	return it.Store.StoreName
}

func formatPickup(start, end *time.Time) string {
	if start == nil || end == nil {
		return "-"
	}
	s, e := start.Local(), end.Local()
	return s.Format("Mon 15:04") + "-" + e.Format("15:04")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
