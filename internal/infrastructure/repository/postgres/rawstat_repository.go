package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type RawStatRepository struct {
	db *sqlx.DB
}

func NewRawStatRepository(db *sqlx.DB) *RawStatRepository {
	return &RawStatRepository{db: db}
}

func (r *RawStatRepository) UpsertValues(ctx context.Context, items []rawstat.Value) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate raw stat fixture_id=%d identifier=%s: %w", item.FixtureID, item.Identifier, err)
		}
		insertModel := rawStatInsertModel{
			FixtureID:  item.FixtureID,
			GameweekID: item.GameweekID,
			Identifier: item.Identifier,
			Side:       item.Side,
			PlayerID:   item.PlayerID,
			Value:      item.Value,
		}

		query, args, err := qb.InsertModel("raw_fixture_stats", insertModel, `ON CONFLICT (fixture_id, identifier, side, player_id)
DO UPDATE SET
    gameweek_id = EXCLUDED.gameweek_id,
    value = EXCLUDED.value,
    updated_at = now()`)
		if err != nil {
			return fmt.Errorf("build upsert raw stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw stat fixture_id=%d identifier=%s side=%s player_id=%d: %w",
				item.FixtureID, item.Identifier, item.Side, item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw stats tx: %w", err)
	}
	return nil
}

func (r *RawStatRepository) ListByGameweek(ctx context.Context, gameweekID int) ([]rawstat.Value, error) {
	query, args, err := qb.Select("fixture_id", "gameweek_id", "identifier", "side", "player_id", "value").
		From("raw_fixture_stats").
		Where(qb.Eq("gameweek_id", gameweekID)).
		OrderBy("fixture_id", "identifier", "side", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select raw stats query: %w", err)
	}

	var rows []rawStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select raw stats gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]rawstat.Value, 0, len(rows))
	for _, row := range rows {
		out = append(out, rawstat.Value{
			FixtureID:  row.FixtureID,
			GameweekID: row.GameweekID,
			Identifier: row.Identifier,
			Side:       row.Side,
			PlayerID:   row.PlayerID,
			Value:      row.Value,
		})
	}
	return out, nil
}

type rawStatInsertModel struct {
	FixtureID  int    `db:"fixture_id"`
	GameweekID int    `db:"gameweek_id"`
	Identifier string `db:"identifier"`
	Side       string `db:"side"`
	PlayerID   int    `db:"player_id"`
	Value      int    `db:"value"`
}

type rawStatTableModel struct {
	FixtureID  int    `db:"fixture_id"`
	GameweekID int    `db:"gameweek_id"`
	Identifier string `db:"identifier"`
	Side       string `db:"side"`
	PlayerID   int    `db:"player_id"`
	Value      int    `db:"value"`
}
