package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/event"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append writes events as plain inserts. The table carries no conflict
// target on purpose: the log is append-only and rows are never rewritten.
func (r *EventRepository) Append(ctx context.Context, items []event.Event) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx append events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate event fixture_id=%d player_id=%d type=%s: %w", item.FixtureID, item.PlayerID, item.Type, err)
		}
		insertModel := eventInsertModel{
			GameweekID: item.GameweekID,
			FixtureID:  item.FixtureID,
			Type:       item.Type,
			PlayerID:   item.PlayerID,
			Delta:      item.Delta,
			Side:       item.Side,
			OccurredAt: item.OccurredAt.UTC(),
		}

		query, args, err := qb.InsertModel("events", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert event fixture_id=%d player_id=%d type=%s: %w", item.FixtureID, item.PlayerID, item.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append events tx: %w", err)
	}
	return nil
}

func (r *EventRepository) ListRecent(ctx context.Context, gameweekID, limit int) ([]event.Event, error) {
	builder := qb.Select("gameweek_id", "fixture_id", "type", "player_id", "delta", "side", "occurred_at").
		From("events").
		Where(qb.Eq("gameweek_id", gameweekID)).
		OrderBy("occurred_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.Event{
			GameweekID: row.GameweekID,
			FixtureID:  row.FixtureID,
			Type:       row.Type,
			PlayerID:   row.PlayerID,
			Delta:      row.Delta,
			Side:       row.Side,
			OccurredAt: row.OccurredAt.UTC(),
		})
	}
	return out, nil
}

type eventInsertModel struct {
	GameweekID int       `db:"gameweek_id"`
	FixtureID  int       `db:"fixture_id"`
	Type       string    `db:"type"`
	PlayerID   int       `db:"player_id"`
	Delta      int       `db:"delta"`
	Side       string    `db:"side"`
	OccurredAt time.Time `db:"occurred_at"`
}

type eventTableModel struct {
	GameweekID int       `db:"gameweek_id"`
	FixtureID  int       `db:"fixture_id"`
	Type       string    `db:"type"`
	PlayerID   int       `db:"player_id"`
	Delta      int       `db:"delta"`
	Side       string    `db:"side"`
	OccurredAt time.Time `db:"occurred_at"`
}
