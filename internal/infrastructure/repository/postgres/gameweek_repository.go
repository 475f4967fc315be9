package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type GameweekRepository struct {
	db *sqlx.DB
}

func NewGameweekRepository(db *sqlx.DB) *GameweekRepository {
	return &GameweekRepository{db: db}
}

func (r *GameweekRepository) UpsertStatuses(ctx context.Context, items []gameweek.Gameweek) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert gameweeks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate gameweek id=%d: %w", item.ID, err)
		}
		insertModel := gameweekInsertModel{
			ID:          item.ID,
			BonusAdded:  item.BonusAdded,
			DataChecked: item.DataChecked,
		}

		query, args, err := qb.InsertModel("gameweeks", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    bonus_added = EXCLUDED.bonus_added,
    data_checked = EXCLUDED.data_checked,
    updated_at = now()`)
		if err != nil {
			return fmt.Errorf("build upsert gameweek query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert gameweek id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert gameweeks tx: %w", err)
	}
	return nil
}

func (r *GameweekRepository) GetByID(ctx context.Context, id int) (gameweek.Gameweek, bool, error) {
	query, args, err := qb.Select("id", "bonus_added", "data_checked").
		From("gameweeks").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return gameweek.Gameweek{}, false, fmt.Errorf("build select gameweek query: %w", err)
	}

	var row gameweekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gameweek.Gameweek{}, false, nil
		}
		return gameweek.Gameweek{}, false, fmt.Errorf("select gameweek id=%d: %w", id, err)
	}

	return gameweek.Gameweek{
		ID:          row.ID,
		BonusAdded:  row.BonusAdded,
		DataChecked: row.DataChecked,
	}, true, nil
}

type gameweekInsertModel struct {
	ID          int  `db:"id"`
	BonusAdded  bool `db:"bonus_added"`
	DataChecked bool `db:"data_checked"`
}

type gameweekTableModel struct {
	ID          int  `db:"id"`
	BonusAdded  bool `db:"bonus_added"`
	DataChecked bool `db:"data_checked"`
}
