package rawstat

import "context"

type Repository interface {
	UpsertValues(ctx context.Context, items []Value) error
	ListByGameweek(ctx context.Context, gameweekID int) ([]Value, error)
}
