package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
)

type rawStatKey struct {
	fixtureID  int
	identifier string
	side       string
	playerID   int
}

type RawStatRepository struct {
	mu    sync.RWMutex
	items map[rawStatKey]rawstat.Value
}

func NewRawStatRepository() *RawStatRepository {
	return &RawStatRepository{items: make(map[rawStatKey]rawstat.Value)}
}

func (r *RawStatRepository) UpsertValues(_ context.Context, items []rawstat.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		key := rawStatKey{
			fixtureID:  item.FixtureID,
			identifier: item.Identifier,
			side:       item.Side,
			playerID:   item.PlayerID,
		}
		r.items[key] = item
	}
	return nil
}

func (r *RawStatRepository) ListByGameweek(_ context.Context, gameweekID int) ([]rawstat.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rawstat.Value, 0)
	for _, item := range r.items {
		if item.GameweekID == gameweekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FixtureID != b.FixtureID {
			return a.FixtureID < b.FixtureID
		}
		if a.Identifier != b.Identifier {
			return a.Identifier < b.Identifier
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		return a.PlayerID < b.PlayerID
	})
	return out, nil
}
