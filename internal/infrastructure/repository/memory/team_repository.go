package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[int]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[int]team.Team)}
}

func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
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

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
