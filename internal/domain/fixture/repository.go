package fixture

import "context"

type Repository interface {
	UpsertFixtures(ctx context.Context, items []Fixture) error
	ListByGameweek(ctx context.Context, gameweekID int) ([]Fixture, error)
}
