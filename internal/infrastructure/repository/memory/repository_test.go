package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/event"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
)

func TestFixtureRepositoryUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewFixtureRepository()
	ctx := context.Background()

	first := fixture.Fixture{ID: 101, GameweekID: 7, HomeTeamID: 1, AwayTeamID: 2}
	require.NoError(t, repo.UpsertFixtures(ctx, []fixture.Fixture{first}))

	updated := first
	updated.Started = true
	updated.MinutesElapsed = 45
	require.NoError(t, repo.UpsertFixtures(ctx, []fixture.Fixture{updated}))
	require.NoError(t, repo.UpsertFixtures(ctx, []fixture.Fixture{updated}))

	got, err := repo.ListByGameweek(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Started)
	require.Equal(t, 45, got[0].MinutesElapsed)
}

func TestFixtureRepositoryRejectsInvalidRow(t *testing.T) {
	t.Parallel()

	repo := NewFixtureRepository()
	err := repo.UpsertFixtures(context.Background(), []fixture.Fixture{{ID: 0, GameweekID: 7}})
	require.Error(t, err)
}

func TestLiveStatRepositoryKeysByGameweekAndPlayer(t *testing.T) {
	t.Parallel()

	repo := NewLiveStatRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertStats(ctx, []livestat.PlayerStat{
		{GameweekID: 7, PlayerID: 11, GoalsScored: 1},
		{GameweekID: 8, PlayerID: 11, GoalsScored: 2},
	}))
	require.NoError(t, repo.UpsertStats(ctx, []livestat.PlayerStat{
		{GameweekID: 7, PlayerID: 11, GoalsScored: 2, TotalPoints: 9},
	}))

	got, err := repo.ListByGameweek(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].GoalsScored)
	require.Equal(t, 9, got[0].TotalPoints)
}

func TestRawStatRepositoryCompositeKey(t *testing.T) {
	t.Parallel()

	repo := NewRawStatRepository()
	ctx := context.Background()

	rows := []rawstat.Value{
		{FixtureID: 101, GameweekID: 7, Identifier: "goals_scored", Side: fixture.SideHome, PlayerID: 11, Value: 1},
		{FixtureID: 101, GameweekID: 7, Identifier: "goals_scored", Side: fixture.SideAway, PlayerID: 11, Value: 1},
		{FixtureID: 101, GameweekID: 7, Identifier: "assists", Side: fixture.SideHome, PlayerID: 11, Value: 1},
	}
	require.NoError(t, repo.UpsertValues(ctx, rows))

	rows[0].Value = 2
	require.NoError(t, repo.UpsertValues(ctx, rows[:1]))

	got, err := repo.ListByGameweek(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "assists", got[0].Identifier)
	require.Equal(t, 1, got[1].Value)
	require.Equal(t, fixture.SideAway, got[1].Side)
	require.Equal(t, 2, got[2].Value)
	require.Equal(t, fixture.SideHome, got[2].Side)
}

func TestEventRepositoryListRecentReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	repo := NewEventRepository()
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		err := repo.Append(ctx, []event.Event{{
			GameweekID: 7,
			FixtureID:  101,
			Type:       event.TypeGoalsScored,
			PlayerID:   10 + i,
			Delta:      1,
			Side:       fixture.SideHome,
			OccurredAt: now.Add(time.Duration(i) * time.Minute),
		}})
		require.NoError(t, err)
	}

	got, err := repo.ListRecent(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 13, got[0].PlayerID)
	require.Equal(t, 12, got[1].PlayerID)
}

func TestEventRepositoryRejectsNonPositiveDelta(t *testing.T) {
	t.Parallel()

	repo := NewEventRepository()
	err := repo.Append(context.Background(), []event.Event{{
		GameweekID: 7,
		FixtureID:  101,
		Type:       event.TypeGoalsScored,
		PlayerID:   11,
		Delta:      0,
		Side:       fixture.SideHome,
		OccurredAt: time.Now(),
	}})
	require.Error(t, err)
}

func TestGameweekRepositoryGetByIDMiss(t *testing.T) {
	t.Parallel()

	repo := NewGameweekRepository()
	ctx := context.Background()

	_, found, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.UpsertStatuses(ctx, []gameweek.Gameweek{{ID: 7, BonusAdded: true}}))
	got, found, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.BonusAdded)
	require.False(t, got.Finished())
}
