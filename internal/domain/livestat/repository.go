package livestat

import "context"

type Repository interface {
	UpsertStats(ctx context.Context, items []PlayerStat) error
	ListByGameweek(ctx context.Context, gameweekID int) ([]PlayerStat, error)
}
