package db

import (
	"context"
	"fmt"

	"storefront/logging"
)

// Timestamps are stored as fixed-width UTC text so ordering by created_at
// is the same on both drivers.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		search_key  TEXT NOT NULL DEFAULT '',
		created_by  TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id                 TEXT PRIMARY KEY,
		category_id        TEXT NOT NULL REFERENCES categories(id),
		name               TEXT NOT NULL,
		slug               TEXT NOT NULL UNIQUE,
		search_key         TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		price              DOUBLE PRECISION NOT NULL,
		minimum_quantity   INTEGER NOT NULL,
		maximum_quantity   INTEGER,
		circulation        INTEGER NOT NULL DEFAULT 1,
		status             INTEGER NOT NULL DEFAULT 1,
		conditional_fields TEXT NOT NULL DEFAULT '[]',
		image_path         TEXT NOT NULL DEFAULT '',
		created_by         TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		item_id          TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		quantity         INTEGER NOT NULL,
		selections       TEXT NOT NULL DEFAULT '[]',
		selected_options TEXT NOT NULL DEFAULT '[]',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		invoice_number TEXT NOT NULL UNIQUE,
		status         INTEGER NOT NULL DEFAULT 1,
		total_quantity INTEGER NOT NULL,
		total_price    DOUBLE PRECISION NOT NULL,
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id               TEXT PRIMARY KEY,
		order_id         TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id          TEXT NOT NULL,
		item_name        TEXT NOT NULL,
		unit_price       DOUBLE PRECISION NOT NULL,
		quantity         INTEGER NOT NULL,
		options_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
		line_total       DOUBLE PRECISION NOT NULL,
		selected_options TEXT NOT NULL DEFAULT '[]',
		position         INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, d *DB) error {
	for i, stmt := range migrations {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	logging.Sugar.Infof("✓ Schema up to date (%d statements)", len(migrations))
	return nil
}
