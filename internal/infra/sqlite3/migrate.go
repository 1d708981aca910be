package sqlite3

import (
	"context"
	"fmt"
)

// One live subscription row per user: user_id is unique and reconciliation
// upserts into it instead of appending history rows.
const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	user_id     INTEGER PRIMARY KEY,
	username    TEXT,
	phone       TEXT      NOT NULL,
	amount_kes  INTEGER   NOT NULL,
	payment_ref TEXT      NOT NULL,
	expires_at  TIMESTAMP NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_expires_at ON subscriptions (expires_at);

CREATE TABLE IF NOT EXISTS phone_directory (
	phone      TEXT PRIMARY KEY,
	chat_id    INTEGER   NOT NULL,
	username   TEXT,
	updated_at TIMESTAMP NOT NULL
);
`

// Migrate creates the tables on startup. There is no versioned migration
// tooling here; the schema is additive and idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
