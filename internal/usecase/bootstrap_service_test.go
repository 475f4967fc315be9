package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/player"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/team"
	"github.com/ardhisaif/fpl-live-sync/internal/infrastructure/repository/memory"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

func TestBootstrapSyncPersistsReferenceData(t *testing.T) {
	t.Parallel()

	client := newStubUpstreamClient()
	roster := make([]player.Player, 0, 450)
	for i := 1; i <= 450; i++ {
		roster = append(roster, player.Player{
			ID:       i,
			TeamID:   (i % 20) + 1,
			WebName:  fmt.Sprintf("player-%d", i),
			Position: player.PositionMidfielder,
		})
	}
	client.bootstrap = UpstreamBootstrap{
		Teams: []team.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS"},
			{ID: 2, Name: "Liverpool", ShortName: "LIV"},
		},
		Players: roster,
		Gameweeks: []gameweek.Gameweek{
			{ID: 1, BonusAdded: true, DataChecked: true},
			{ID: 2},
		},
	}

	teams := memory.NewTeamRepository()
	players := memory.NewPlayerRepository()
	gameweeks := memory.NewGameweekRepository()

	service, err := NewBootstrapService(BootstrapServiceConfig{
		Client:    client,
		Teams:     teams,
		Players:   players,
		Gameweeks: gameweeks,
		Logger:    logging.NewNop(),
		Workers:   3,
		ChunkSize: 100,
	})
	require.NoError(t, err)

	result, err := service.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Teams)
	require.Equal(t, 450, result.Players)
	require.Equal(t, 2, result.Gameweeks)
	require.Equal(t, 2, result.CurrentGameweek)

	storedPlayers, err := players.List(context.Background())
	require.NoError(t, err)
	require.Len(t, storedPlayers, 450)

	stored, ok, err := gameweeks.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stored.Finished())
}

func TestBootstrapSyncSurfacesFetchError(t *testing.T) {
	t.Parallel()

	client := newStubUpstreamClient()
	client.bootstrapErr = errors.New("upstream down")

	service, err := NewBootstrapService(BootstrapServiceConfig{
		Client:    client,
		Teams:     memory.NewTeamRepository(),
		Players:   memory.NewPlayerRepository(),
		Gameweeks: memory.NewGameweekRepository(),
		Logger:    logging.NewNop(),
	})
	require.NoError(t, err)

	_, err = service.Sync(context.Background())
	require.ErrorContains(t, err, "fetch bootstrap")
}

func TestBootstrapServiceRequiresClient(t *testing.T) {
	t.Parallel()

	_, err := NewBootstrapService(BootstrapServiceConfig{
		Teams:     memory.NewTeamRepository(),
		Players:   memory.NewPlayerRepository(),
		Gameweeks: memory.NewGameweekRepository(),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
