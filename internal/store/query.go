package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByAvailable = "available"
	orderByName      = "name"
	orderByUpdated   = "updated_at"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByAvailable: "items_available DESC, display_name ASC",
	orderByName:      "display_name ASC",
	orderByUpdated:   "updated_at DESC",
}

const defaultOrderBy = "updated_at DESC"

const baseSnapshotsSelect = `SELECT id, item_id, search_name, store_name, display_name,
	items_available, price, currency, pickup_start, pickup_end, last_restock_at,
	first_seen_at, updated_at
FROM stock_snapshots`

const countSnapshotsSelect = "SELECT COUNT(*) FROM stock_snapshots"

// placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a snapshot
// query. It returns two SQL strings (one for the data query, one for the
// count query) and the positional parameters.
func (q *SnapshotQuery) ToSQL(ph placeholder) (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.SearchName != nil {
		conditions = append(conditions, "search_name = "+ph(paramIdx))
		args = append(args, *q.SearchName)
		paramIdx++
	}

	if q.InStockOnly {
		conditions = append(conditions, "items_available > 0")
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	limit := q.EffectiveLimit()
	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseSnapshotsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countSnapshotsSelect + whereClause

	return dataSQL, countSQL, args
}

// EffectiveLimit returns the page size actually applied to the query.
func (q *SnapshotQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return defaultLimit
	case q.Limit > maxLimit:
		return maxLimit
	default:
		return q.Limit
	}
}
