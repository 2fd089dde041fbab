package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FavoriteRepo provides data access to the favorites table.  Favorites
// are a plain (user_id, event_id) pair; the row's existence is the flag.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a new FavoriteRepo bound to the provided database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Toggle flips the favorite state of an event for a viewer and returns
// the new state.  The caller passes the state it currently believes in;
// the matching statement (insert or delete) is chosen from that, and an
// insert racing an existing row is treated as already-favorite rather
// than an error.
func (r *FavoriteRepo) Toggle(ctx context.Context, viewerID, eventID uint64, currentlyFavorite bool) (bool, error) {
	if currentlyFavorite {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM favorites WHERE user_id = ? AND event_id = ?`,
			viewerID, eventID,
		); err != nil {
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO favorites (user_id, event_id) VALUES (?, ?)`,
		viewerID, eventID,
	); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

// IsFavorite reports whether the viewer has favorited the event.
func (r *FavoriteRepo) IsFavorite(ctx context.Context, viewerID, eventID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND event_id = ?`,
		viewerID, eventID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}
