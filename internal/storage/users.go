package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser maps a Tailscale login to a local user row, creating the
// row on first sight with the login as a fallback display name. Every call
// bumps last_seen; a non-empty display name replaces the stored one, an
// empty one leaves it alone.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	insertName := displayName
	if insertName == "" {
		insertName = login
	}

	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name, last_seen)
		VALUES ($1, $2, NOW())
		ON CONFLICT (login) DO UPDATE SET
			last_seen    = NOW(),
			display_name = COALESCE(NULLIF($3, ''), users.display_name)
		RETURNING id`,
		login, insertName, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}
