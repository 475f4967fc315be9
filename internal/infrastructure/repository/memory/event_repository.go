package memory

import (
	"context"
	"sync"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/event"
)

type EventRepository struct {
	mu    sync.RWMutex
	items []event.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Append(_ context.Context, items []event.Event) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, items...)
	return nil
}

// ListRecent returns the newest events first, matching insertion order since
// events are appended as they are observed.
func (r *EventRepository) ListRecent(_ context.Context, gameweekID, limit int) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, limit)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].GameweekID != gameweekID {
			continue
		}
		out = append(out, r.items[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
