package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type LiveStatRepository struct {
	db *sqlx.DB
}

func NewLiveStatRepository(db *sqlx.DB) *LiveStatRepository {
	return &LiveStatRepository{db: db}
}

func (r *LiveStatRepository) UpsertStats(ctx context.Context, items []livestat.PlayerStat) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert live stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate live stat gameweek_id=%d player_id=%d: %w", item.GameweekID, item.PlayerID, err)
		}
		insertModel := liveStatInsertModel{
			GameweekID:      item.GameweekID,
			PlayerID:        item.PlayerID,
			Minutes:         item.Minutes,
			GoalsScored:     item.GoalsScored,
			Assists:         item.Assists,
			CleanSheets:     item.CleanSheets,
			GoalsConceded:   item.GoalsConceded,
			OwnGoals:        item.OwnGoals,
			PenaltiesSaved:  item.PenaltiesSaved,
			PenaltiesMissed: item.PenaltiesMissed,
			YellowCards:     item.YellowCards,
			RedCards:        item.RedCards,
			Saves:           item.Saves,
			Bonus:           item.Bonus,
			BPS:             item.BPS,
			TotalPoints:     item.TotalPoints,
		}

		query, args, err := qb.InsertModel("live_player_stats", insertModel, `ON CONFLICT (gameweek_id, player_id)
DO UPDATE SET
    minutes = EXCLUDED.minutes,
    goals_scored = EXCLUDED.goals_scored,
    assists = EXCLUDED.assists,
    clean_sheets = EXCLUDED.clean_sheets,
    goals_conceded = EXCLUDED.goals_conceded,
    own_goals = EXCLUDED.own_goals,
    penalties_saved = EXCLUDED.penalties_saved,
    penalties_missed = EXCLUDED.penalties_missed,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    saves = EXCLUDED.saves,
    bonus = EXCLUDED.bonus,
    bps = EXCLUDED.bps,
    total_points = EXCLUDED.total_points,
    updated_at = now()`)
		if err != nil {
			return fmt.Errorf("build upsert live stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert live stat gameweek_id=%d player_id=%d: %w", item.GameweekID, item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert live stats tx: %w", err)
	}
	return nil
}

func (r *LiveStatRepository) ListByGameweek(ctx context.Context, gameweekID int) ([]livestat.PlayerStat, error) {
	query, args, err := qb.Select(
		"gameweek_id", "player_id", "minutes", "goals_scored", "assists",
		"clean_sheets", "goals_conceded", "own_goals", "penalties_saved",
		"penalties_missed", "yellow_cards", "red_cards", "saves",
		"bonus", "bps", "total_points",
	).From("live_player_stats").
		Where(qb.Eq("gameweek_id", gameweekID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select live stats query: %w", err)
	}

	var rows []liveStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select live stats gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]livestat.PlayerStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, livestat.PlayerStat{
			GameweekID:      row.GameweekID,
			PlayerID:        row.PlayerID,
			Minutes:         row.Minutes,
			GoalsScored:     row.GoalsScored,
			Assists:         row.Assists,
			CleanSheets:     row.CleanSheets,
			GoalsConceded:   row.GoalsConceded,
			OwnGoals:        row.OwnGoals,
			PenaltiesSaved:  row.PenaltiesSaved,
			PenaltiesMissed: row.PenaltiesMissed,
			YellowCards:     row.YellowCards,
			RedCards:        row.RedCards,
			Saves:           row.Saves,
			Bonus:           row.Bonus,
			BPS:             row.BPS,
			TotalPoints:     row.TotalPoints,
		})
	}
	return out, nil
}

type liveStatInsertModel struct {
	GameweekID      int `db:"gameweek_id"`
	PlayerID        int `db:"player_id"`
	Minutes         int `db:"minutes"`
	GoalsScored     int `db:"goals_scored"`
	Assists         int `db:"assists"`
	CleanSheets     int `db:"clean_sheets"`
	GoalsConceded   int `db:"goals_conceded"`
	OwnGoals        int `db:"own_goals"`
	PenaltiesSaved  int `db:"penalties_saved"`
	PenaltiesMissed int `db:"penalties_missed"`
	YellowCards     int `db:"yellow_cards"`
	RedCards        int `db:"red_cards"`
	Saves           int `db:"saves"`
	Bonus           int `db:"bonus"`
	BPS             int `db:"bps"`
	TotalPoints     int `db:"total_points"`
}

type liveStatTableModel struct {
	GameweekID      int `db:"gameweek_id"`
	PlayerID        int `db:"player_id"`
	Minutes         int `db:"minutes"`
	GoalsScored     int `db:"goals_scored"`
	Assists         int `db:"assists"`
	CleanSheets     int `db:"clean_sheets"`
	GoalsConceded   int `db:"goals_conceded"`
	OwnGoals        int `db:"own_goals"`
	PenaltiesSaved  int `db:"penalties_saved"`
	PenaltiesMissed int `db:"penalties_missed"`
	YellowCards     int `db:"yellow_cards"`
	RedCards        int `db:"red_cards"`
	Saves           int `db:"saves"`
	Bonus           int `db:"bonus"`
	BPS             int `db:"bps"`
	TotalPoints     int `db:"total_points"`
}
