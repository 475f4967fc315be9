package team

import "context"

type Repository interface {
	UpsertTeams(ctx context.Context, items []Team) error
	List(ctx context.Context) ([]Team, error)
}
