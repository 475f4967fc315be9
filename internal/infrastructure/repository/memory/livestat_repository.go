package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
)

type liveStatKey struct {
	gameweekID int
	playerID   int
}

type LiveStatRepository struct {
	mu    sync.RWMutex
	items map[liveStatKey]livestat.PlayerStat
}

func NewLiveStatRepository() *LiveStatRepository {
	return &LiveStatRepository{items: make(map[liveStatKey]livestat.PlayerStat)}
}

func (r *LiveStatRepository) UpsertStats(_ context.Context, items []livestat.PlayerStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		r.items[liveStatKey{gameweekID: item.GameweekID, playerID: item.PlayerID}] = item
	}
	return nil
}

func (r *LiveStatRepository) ListByGameweek(_ context.Context, gameweekID int) ([]livestat.PlayerStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]livestat.PlayerStat, 0)
	for key, item := range r.items {
		if key.gameweekID == gameweekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}
