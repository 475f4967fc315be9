package usecase

import (
	"context"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/player"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/team"
)

// UpstreamClient is the boundary to the external fantasy statistics API.
// Every call is a fresh fetch; callers own any caching or memoization.
type UpstreamClient interface {
	FetchBootstrap(ctx context.Context) (UpstreamBootstrap, error)
	// FetchFixtures returns fixtures for one gameweek; gameweekID 0 fetches
	// the full season schedule.
	FetchFixtures(ctx context.Context, gameweekID int) ([]FixtureSnapshot, error)
	FetchLiveStats(ctx context.Context, gameweekID int) ([]livestat.PlayerStat, error)
	FetchEventStatus(ctx context.Context) ([]GameweekStatus, error)
}

// UpstreamBootstrap is the static metadata pull: reference entities plus the
// gameweek list with upstream completion flags.
type UpstreamBootstrap struct {
	Teams     []team.Team
	Players   []player.Player
	Gameweeks []gameweek.Gameweek
}

// FixtureSnapshot is one fixture as reported at poll time, with its per-side
// cumulative stat lines. Stat values are running totals, never deltas.
type FixtureSnapshot struct {
	Fixture fixture.Fixture
	Stats   []FixtureStatLine
}

// FixtureStatLine holds the cumulative values of one stat identifier for
// every involved player, split by side.
type FixtureStatLine struct {
	Identifier string
	Home       []StatElementValue
	Away       []StatElementValue
}

type StatElementValue struct {
	PlayerID int
	Value    int
}

// GameweekStatus is the upstream's per-window bonus finalization flag.
type GameweekStatus struct {
	GameweekID int
	BonusAdded bool
}
