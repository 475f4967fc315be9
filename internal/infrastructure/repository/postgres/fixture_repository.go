package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	qb "github.com/ardhisaif/fpl-live-sync/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) UpsertFixtures(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert fixtures: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate fixture id=%d: %w", item.ID, err)
		}
		insertModel := fixtureInsertModel{
			ID:             item.ID,
			GameweekID:     item.GameweekID,
			HomeTeamID:     item.HomeTeamID,
			AwayTeamID:     item.AwayTeamID,
			HomeScore:      item.HomeScore,
			AwayScore:      item.AwayScore,
			Started:        item.Started,
			Finished:       item.Finished,
			MinutesElapsed: item.MinutesElapsed,
			KickoffAt:      nullableTime(item.KickoffAt),
		}

		query, args, err := qb.InsertModel("fixtures", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    gameweek_id = EXCLUDED.gameweek_id,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    started = EXCLUDED.started,
    finished = EXCLUDED.finished,
    minutes_elapsed = EXCLUDED.minutes_elapsed,
    kickoff_at = EXCLUDED.kickoff_at,
    updated_at = now()`)
		if err != nil {
			return fmt.Errorf("build upsert fixture query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixture id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert fixtures tx: %w", err)
	}
	return nil
}

func (r *FixtureRepository) ListByGameweek(ctx context.Context, gameweekID int) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(
		"id", "gameweek_id", "home_team_id", "away_team_id",
		"home_score", "away_score", "started", "finished",
		"minutes_elapsed", "kickoff_at",
	).From("fixtures").
		Where(qb.Eq("gameweek_id", gameweekID)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		item := fixture.Fixture{
			ID:             row.ID,
			GameweekID:     row.GameweekID,
			HomeTeamID:     row.HomeTeamID,
			AwayTeamID:     row.AwayTeamID,
			HomeScore:      row.HomeScore,
			AwayScore:      row.AwayScore,
			Started:        row.Started,
			Finished:       row.Finished,
			MinutesElapsed: row.MinutesElapsed,
		}
		if row.KickoffAt != nil {
			item.KickoffAt = row.KickoffAt.UTC()
		}
		out = append(out, item)
	}
	return out, nil
}

type fixtureInsertModel struct {
	ID             int        `db:"id"`
	GameweekID     int        `db:"gameweek_id"`
	HomeTeamID     int        `db:"home_team_id"`
	AwayTeamID     int        `db:"away_team_id"`
	HomeScore      *int       `db:"home_score"`
	AwayScore      *int       `db:"away_score"`
	Started        bool       `db:"started"`
	Finished       bool       `db:"finished"`
	MinutesElapsed int        `db:"minutes_elapsed"`
	KickoffAt      *time.Time `db:"kickoff_at"`
}

type fixtureTableModel struct {
	ID             int        `db:"id"`
	GameweekID     int        `db:"gameweek_id"`
	HomeTeamID     int        `db:"home_team_id"`
	AwayTeamID     int        `db:"away_team_id"`
	HomeScore      *int       `db:"home_score"`
	AwayScore      *int       `db:"away_score"`
	Started        bool       `db:"started"`
	Finished       bool       `db:"finished"`
	MinutesElapsed int        `db:"minutes_elapsed"`
	KickoffAt      *time.Time `db:"kickoff_at"`
}

func nullableTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	v := value.UTC()
	return &v
}
