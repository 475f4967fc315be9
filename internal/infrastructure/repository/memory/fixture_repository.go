package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
)

type FixtureRepository struct {
	mu    sync.RWMutex
	items map[int]fixture.Fixture
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{items: make(map[int]fixture.Fixture)}
}

func (r *FixtureRepository) UpsertFixtures(_ context.Context, items []fixture.Fixture) error {
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

func (r *FixtureRepository) ListByGameweek(_ context.Context, gameweekID int) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.items {
		if item.GameweekID == gameweekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
