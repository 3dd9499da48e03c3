package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// statements are idempotent and run in order on every Migrate call.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS user_roles (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`INSERT INTO user_roles (name) VALUES ('Customer'), ('Staff'), ('Admin')
		ON CONFLICT (name) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS users (
		id                    BIGSERIAL PRIMARY KEY,
		username              TEXT NOT NULL UNIQUE,
		email                 TEXT NOT NULL UNIQUE,
		password_digest       TEXT NOT NULL,
		role_id               INT REFERENCES user_roles(id),
		reset_code            TEXT,
		reset_code_expires_at TIMESTAMPTZ,
		reset_verified_at     TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		price       NUMERIC(10,2) NOT NULL,
		category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		stock       INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT REFERENCES users(id) ON DELETE SET NULL,
		total_amount      NUMERIC(10,2) NOT NULL,
		payment_method    TEXT NOT NULL DEFAULT '',
		payment_reference TEXT NOT NULL DEFAULT '',
		station_number    TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'Pending',
		payment_status    TEXT NOT NULL DEFAULT 'Unpaid',
		needs_review      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, status)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           BIGSERIAL PRIMARY KEY,
		order_id     BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id BIGINT,
		name         TEXT NOT NULL,
		price        NUMERIC(10,2) NOT NULL,
		quantity     INT NOT NULL CHECK (quantity > 0),
		notes        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT REFERENCES users(id) ON DELETE SET NULL,
		order_id   BIGINT REFERENCES orders(id) ON DELETE SET NULL,
		name       TEXT NOT NULL DEFAULT '',
		rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema and seeds the role table.
func Migrate(ctx context.Context, db execer) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
