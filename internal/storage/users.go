package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen, and display_name and avatar_url
// when non-empty, on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName, avatarURL string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(),
			    display_name = COALESCE(NULLIF($2, ''), users.display_name),
			    avatar_url = COALESCE(NULLIF($3, ''), users.avatar_url)
		RETURNING id
	`, login, displayName, avatarURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}
