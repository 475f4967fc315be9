package memory

import (
	"context"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
)

type GameweekRepository struct {
	mu    sync.RWMutex
	items map[int]gameweek.Gameweek
}

func NewGameweekRepository() *GameweekRepository {
	return &GameweekRepository{items: make(map[int]gameweek.Gameweek)}
}

func (r *GameweekRepository) UpsertStatuses(_ context.Context, items []gameweek.Gameweek) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		r.items[item.ID] = item
	}
	return nil
}

func (r *GameweekRepository) GetByID(_ context.Context, id int) (gameweek.Gameweek, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}
