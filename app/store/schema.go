package store

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the accounts table if it does not exist. Intended for
// local development and test environments; real deployments run migrations.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,

  role TEXT NOT NULL DEFAULT 'user',

  photo_id TEXT NOT NULL,
  photo_url TEXT NOT NULL,

  reset_token_hash TEXT NULL,
  reset_token_expiry TIMESTAMPTZ NULL,

  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
	return err
}
