package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestSnapshotQuery_ToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         SnapshotQuery
		ph            placeholder
		wantCountSQL  string
		wantArgs      []any
		wantDataHas   []string // substrings that must appear in dataSQL
		wantDataNotIn []string // substrings that must NOT appear
	}{
		{
			name:  "empty query uses defaults",
			query: SnapshotQuery{},
			ph:    dollarPlaceholder,
			wantDataHas: []string{
				"FROM stock_snapshots",
				"ORDER BY updated_at DESC",
				"LIMIT 50",
				"OFFSET 0",
			},
			wantDataNotIn: []string{"WHERE"},
			wantCountSQL:  "SELECT COUNT(*) FROM stock_snapshots",
			wantArgs:      nil,
		},
		{
			name:         "search name filter postgres",
			query:        SnapshotQuery{SearchName: ptr("home")},
			ph:           dollarPlaceholder,
			wantDataHas:  []string{"WHERE search_name = $1"},
			wantCountSQL: "SELECT COUNT(*) FROM stock_snapshots WHERE search_name = $1",
			wantArgs:     []any{"home"},
		},
		{
			name:         "search name filter sqlite",
			query:        SnapshotQuery{SearchName: ptr("home")},
			ph:           questionPlaceholder,
			wantDataHas:  []string{"WHERE search_name = ?"},
			wantCountSQL: "SELECT COUNT(*) FROM stock_snapshots WHERE search_name = ?",
			wantArgs:     []any{"home"},
		},
		{
			name:         "in stock only",
			query:        SnapshotQuery{InStockOnly: true},
			ph:           dollarPlaceholder,
			wantDataHas:  []string{"WHERE items_available > 0"},
			wantCountSQL: "SELECT COUNT(*) FROM stock_snapshots WHERE items_available > 0",
		},
		{
			name:         "combined filters",
			query:        SnapshotQuery{SearchName: ptr("office"), InStockOnly: true},
			ph:           dollarPlaceholder,
			wantDataHas:  []string{"WHERE search_name = $1 AND items_available > 0"},
			wantCountSQL: "SELECT COUNT(*) FROM stock_snapshots WHERE search_name = $1 AND items_available > 0",
			wantArgs:     []any{"office"},
		},
		{
			name:        "order by available",
			query:       SnapshotQuery{OrderBy: "available"},
			ph:          dollarPlaceholder,
			wantDataHas: []string{"ORDER BY items_available DESC, display_name ASC"},
		},
		{
			name:        "unknown order falls back to default",
			query:       SnapshotQuery{OrderBy: "price; DROP TABLE stock_snapshots"},
			ph:          dollarPlaceholder,
			wantDataHas: []string{"ORDER BY updated_at DESC"},
			wantDataNotIn: []string{
				"DROP TABLE",
			},
		},
		{
			name:        "limit capped",
			query:       SnapshotQuery{Limit: 10000, Offset: -5},
			ph:          dollarPlaceholder,
			wantDataHas: []string{"LIMIT 500", "OFFSET 0"},
		},
		{
			name:        "custom limit and offset",
			query:       SnapshotQuery{Limit: 10, Offset: 20},
			ph:          dollarPlaceholder,
			wantDataHas: []string{"LIMIT 10", "OFFSET 20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dataSQL, countSQL, args := tt.query.ToSQL(tt.ph)

			for _, s := range tt.wantDataHas {
				assert.Contains(t, dataSQL, s)
			}
			for _, s := range tt.wantDataNotIn {
				assert.NotContains(t, dataSQL, s)
			}
			if tt.wantCountSQL != "" {
				assert.Equal(t, tt.wantCountSQL, countSQL)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSnapshotQuery_EffectiveLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: 50},
		{limit: -3, want: 50},
		{limit: 25, want: 25},
		{limit: 9000, want: 500},
	}

	for _, tt := range tests {
		q := SnapshotQuery{Limit: tt.limit}
		assert.Equal(t, tt.want, q.EffectiveLimit(), "limit %d", tt.limit)
	}
}
