package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/player"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) UpsertPlayers(ctx context.Context, items []player.Player) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate player id=%d: %w", item.ID, err)
		}
		insertModel := playerInsertModel{
			ID:       item.ID,
			TeamID:   item.TeamID,
			Name:     strings.TrimSpace(item.Name),
			WebName:  strings.TrimSpace(item.WebName),
			Position: item.Position,
		}

		query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    name = EXCLUDED.name,
    web_name = EXCLUDED.web_name,
    position = EXCLUDED.position,
    updated_at = now()`)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("id", "team_id", "name", "web_name", "position").
		From("players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:       row.ID,
			TeamID:   row.TeamID,
			Name:     row.Name,
			WebName:  row.WebName,
			Position: row.Position,
		})
	}
	return out, nil
}

type playerInsertModel struct {
	ID       int    `db:"id"`
	TeamID   int    `db:"team_id"`
	Name     string `db:"name"`
	WebName  string `db:"web_name"`
	Position string `db:"position"`
}

type playerTableModel struct {
	ID       int    `db:"id"`
	TeamID   int    `db:"team_id"`
	Name     string `db:"name"`
	WebName  string `db:"web_name"`
	Position string `db:"position"`
}
