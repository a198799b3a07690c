package store

// SQL query constants organized by backend.
// All SQL lives here; store methods reference these constants.

// PostgreSQL queries.
const (
	pgCreateMigrationsTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	pgMigrationApplied = "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)"

	pgRecordMigration = "INSERT INTO schema_migrations (version) VALUES ($1)"

	pgUpsertSnapshot = `
		INSERT INTO stock_snapshots (
			id, item_id, search_name, store_name, display_name,
			items_available, price, currency,
			pickup_start, pickup_end, last_restock_at,
			first_seen_at, updated_at
		) VALUES (
			@id, @item_id, @search_name, @store_name, @display_name,
			@items_available, @price, @currency,
			@pickup_start, @pickup_end, @last_restock_at,
			now(), now()
		)
		ON CONFLICT (item_id) DO UPDATE SET
			search_name = EXCLUDED.search_name,
			store_name = EXCLUDED.store_name,
			display_name = EXCLUDED.display_name,
			items_available = EXCLUDED.items_available,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			pickup_start = EXCLUDED.pickup_start,
			pickup_end = EXCLUDED.pickup_end,
			last_restock_at = COALESCE(EXCLUDED.last_restock_at, stock_snapshots.last_restock_at),
			updated_at = now()
		RETURNING id, first_seen_at, updated_at`

	pgGetSnapshot = baseSnapshotsSelect + " WHERE item_id = $1"
)

// SQLite queries. Timestamps are stored as fixed-width UTC text so that
// lexicographic order matches time order.
const (
	sqliteCreateMigrationsTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`

	sqliteMigrationApplied = "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)"

	sqliteRecordMigration = "INSERT INTO schema_migrations (version) VALUES (?)"

	sqliteUpsertSnapshot = `
		INSERT INTO stock_snapshots (
			id, item_id, search_name, store_name, display_name,
			items_available, price, currency,
			pickup_start, pickup_end, last_restock_at,
			first_seen_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			search_name = excluded.search_name,
			store_name = excluded.store_name,
			display_name = excluded.display_name,
			items_available = excluded.items_available,
			price = excluded.price,
			currency = excluded.currency,
			pickup_start = excluded.pickup_start,
			pickup_end = excluded.pickup_end,
			last_restock_at = COALESCE(excluded.last_restock_at, stock_snapshots.last_restock_at),
			updated_at = excluded.updated_at
		RETURNING id, first_seen_at, updated_at`

	sqliteGetSnapshot = baseSnapshotsSelect + " WHERE item_id = ?"
)
