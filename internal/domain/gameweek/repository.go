package gameweek

import "context"

type Repository interface {
	UpsertStatuses(ctx context.Context, items []Gameweek) error
	// GetByID returns the stored window status. The boolean is false when the
	// window has never been recorded.
	GetByID(ctx context.Context, id int) (Gameweek, bool, error)
}
