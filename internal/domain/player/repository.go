package player

import "context"

type Repository interface {
	UpsertPlayers(ctx context.Context, items []Player) error
	List(ctx context.Context) ([]Player, error)
}
