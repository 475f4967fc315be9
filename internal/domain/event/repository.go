package event

import "context"

// Repository is insert-only on the write side: Append must never be handed a
// duplicate of an already-recorded event. The delta engine guarantees that by
// construction; the store does not re-check it.
type Repository interface {
	Append(ctx context.Context, items []Event) error
	ListRecent(ctx context.Context, gameweekID, limit int) ([]Event, error)
}
