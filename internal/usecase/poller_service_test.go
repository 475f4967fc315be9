package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/event"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
	"github.com/ardhisaif/fpl-live-sync/internal/infrastructure/repository/memory"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

type stubUpstreamClient struct {
	mu           sync.Mutex
	bootstrap    UpstreamBootstrap
	bootstrapErr error
	snapshots    map[int][]FixtureSnapshot
	liveStats    map[int][]livestat.PlayerStat
	statuses     []GameweekStatus
	fixturesErr  error
	fixturesGate chan struct{}
}

func newStubUpstreamClient() *stubUpstreamClient {
	return &stubUpstreamClient{
		snapshots: make(map[int][]FixtureSnapshot),
		liveStats: make(map[int][]livestat.PlayerStat),
	}
}

func (c *stubUpstreamClient) FetchBootstrap(context.Context) (UpstreamBootstrap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bootstrapErr != nil {
		return UpstreamBootstrap{}, c.bootstrapErr
	}
	return c.bootstrap, nil
}

func (c *stubUpstreamClient) FetchFixtures(_ context.Context, gameweekID int) ([]FixtureSnapshot, error) {
	c.mu.Lock()
	gate := c.fixturesGate
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fixturesErr != nil {
		return nil, c.fixturesErr
	}
	return c.snapshots[gameweekID], nil
}

func (c *stubUpstreamClient) FetchLiveStats(_ context.Context, gameweekID int) ([]livestat.PlayerStat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveStats[gameweekID], nil
}

func (c *stubUpstreamClient) FetchEventStatus(context.Context) ([]GameweekStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses, nil
}

func (c *stubUpstreamClient) setSnapshots(gameweekID int, snapshots []FixtureSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[gameweekID] = snapshots
}

type pollerFixture struct {
	service   *PollerService
	client    *stubUpstreamClient
	gameweeks *memory.GameweekRepository
	fixtures  *memory.FixtureRepository
	liveStats *memory.LiveStatRepository
	rawStats  *memory.RawStatRepository
	events    *memory.EventRepository
}

func newPollerFixture(t *testing.T) *pollerFixture {
	t.Helper()

	f := &pollerFixture{
		client:    newStubUpstreamClient(),
		gameweeks: memory.NewGameweekRepository(),
		fixtures:  memory.NewFixtureRepository(),
		liveStats: memory.NewLiveStatRepository(),
		rawStats:  memory.NewRawStatRepository(),
		events:    memory.NewEventRepository(),
	}

	service, err := NewPollerService(PollerServiceConfig{
		Client:    f.client,
		Gameweeks: f.gameweeks,
		Fixtures:  f.fixtures,
		LiveStats: f.liveStats,
		RawStats:  f.rawStats,
		Events:    f.events,
		Logger:    logging.NewNop(),
		Interval:  time.Hour,
	})
	require.NoError(t, err)
	f.service = service
	t.Cleanup(service.StopAll)
	return f
}

func liveSnapshot(fixtureID, gameweekID, goals int) FixtureSnapshot {
	return FixtureSnapshot{
		Fixture: fixture.Fixture{
			ID:             fixtureID,
			GameweekID:     gameweekID,
			HomeTeamID:     1,
			AwayTeamID:     2,
			Started:        true,
			MinutesElapsed: 30,
		},
		Stats: []FixtureStatLine{
			{
				Identifier: event.TypeGoalsScored,
				Home:       []StatElementValue{{PlayerID: 11, Value: goals}},
			},
		},
	}
}

func TestStartRunsFirstCycleAndEmitsEvents(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 2)})

	status, err := f.service.Start(context.Background(), 7, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, status.SessionID)
	require.Equal(t, 30*time.Minute, status.Interval)
	require.Equal(t, 1, status.Cycles)
	require.Equal(t, 1, status.EventsEmitted)
	require.Equal(t, 1, status.TrackedStats)

	events, err := f.events.ListRecent(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.TypeGoalsScored, events[0].Type)
	require.Equal(t, 2, events[0].Delta)
	require.Equal(t, fixture.SideHome, events[0].Side)

	stored, err := f.fixtures.ListByGameweek(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	baseline, err := f.rawStats.ListByGameweek(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, baseline, 1)
	require.Equal(t, 2, baseline[0].Value)
}

func TestStartRejectsDuplicateWindow(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 0)})
	f.client.setSnapshots(8, []FixtureSnapshot{liveSnapshot(201, 8, 0)})

	_, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)

	_, err = f.service.Start(context.Background(), 7, 0)
	require.ErrorIs(t, err, ErrSessionExists)

	_, err = f.service.Start(context.Background(), 8, 0)
	require.NoError(t, err)
	require.Len(t, f.service.ListActive(), 2)
}

func TestStartFailingFirstCycleLeavesNoSession(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.fixturesErr = errors.New("upstream down")

	_, err := f.service.Start(context.Background(), 7, 0)
	require.Error(t, err)
	require.Empty(t, f.service.ListActive())

	f.client.mu.Lock()
	f.client.fixturesErr = nil
	f.client.mu.Unlock()
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 1)})

	_, err = f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
}

func TestStartSeedsBaselineFromStore(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	require.NoError(t, f.rawStats.UpsertValues(context.Background(), []rawstat.Value{{
		FixtureID:  101,
		GameweekID: 7,
		Identifier: event.TypeGoalsScored,
		Side:       fixture.SideHome,
		PlayerID:   11,
		Value:      2,
	}}))
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 2)})

	status, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Equal(t, 0, status.EventsEmitted)

	events, err := f.events.ListRecent(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestStartIgnoresDecreasedCumulativeValue(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	require.NoError(t, f.rawStats.UpsertValues(context.Background(), []rawstat.Value{{
		FixtureID:  101,
		GameweekID: 7,
		Identifier: event.TypeGoalsScored,
		Side:       fixture.SideHome,
		PlayerID:   11,
		Value:      2,
	}}))
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 1)})

	status, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Equal(t, 0, status.EventsEmitted)

	baseline, err := f.rawStats.ListByGameweek(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, baseline, 1)
	require.Equal(t, 1, baseline[0].Value)
}

func TestWindowStatusDerivation(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	finished := liveSnapshot(101, 7, 1)
	finished.Fixture.Started = true
	finished.Fixture.Finished = true
	finished.Fixture.MinutesElapsed = 90
	f.client.setSnapshots(7, []FixtureSnapshot{finished})
	f.client.statuses = []GameweekStatus{{GameweekID: 7, BonusAdded: true}}

	status, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	require.True(t, status.Finished)

	stored, ok, err := f.gameweeks.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stored.BonusAdded)
	require.True(t, stored.DataChecked)
	require.True(t, stored.Finished())
}

func TestFinishedFixturesAreNotDiffed(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	settled := liveSnapshot(101, 7, 3)
	settled.Fixture.Finished = true
	settled.Fixture.MinutesElapsed = 90
	f.client.setSnapshots(7, []FixtureSnapshot{settled})

	_, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)

	events, err := f.events.ListRecent(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestWindowStatusNotFinishedWhileFixturesRun(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 0)})
	f.client.statuses = []GameweekStatus{{GameweekID: 7, BonusAdded: true}}

	status, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	require.False(t, status.Finished)

	stored, ok, err := f.gameweeks.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stored.BonusAdded)
	require.False(t, stored.DataChecked)
}

func TestStopRemovesSession(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 0)})

	status, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)

	require.True(t, f.service.Stop(status.SessionID))
	_, ok := f.service.Status(status.SessionID)
	require.False(t, ok)
	require.False(t, f.service.Stop(status.SessionID))

	restarted, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	require.NotEqual(t, status.SessionID, restarted.SessionID)
}

func TestStopUnknownSessionIsNoOp(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	require.False(t, f.service.Stop("no-such-session"))
}

func TestSessionIsolation(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	f.client.setSnapshots(7, []FixtureSnapshot{liveSnapshot(101, 7, 2)})
	f.client.setSnapshots(8, []FixtureSnapshot{liveSnapshot(201, 8, 1)})

	first, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)
	second, err := f.service.Start(context.Background(), 8, 0)
	require.NoError(t, err)

	require.True(t, f.service.Stop(first.SessionID))

	_, ok := f.service.Status(first.SessionID)
	require.False(t, ok)

	remaining, ok := f.service.Status(second.SessionID)
	require.True(t, ok)
	require.Equal(t, 8, remaining.GameweekID)
	require.Equal(t, second.TrackedStats, remaining.TrackedStats)
	require.Equal(t, second.EventsEmitted, remaining.EventsEmitted)

	active := f.service.ListActive()
	require.Len(t, active, 1)
	require.Equal(t, second.SessionID, active[0].SessionID)
}

func TestStopDuringFailingFirstCycleDoesNotBlock(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	gate := make(chan struct{})
	f.client.mu.Lock()
	f.client.fixturesErr = errors.New("upstream down")
	f.client.fixturesGate = gate
	f.client.mu.Unlock()

	startErr := make(chan error, 1)
	go func() {
		_, err := f.service.Start(context.Background(), 7, 0)
		startErr <- err
	}()

	var sessionID string
	require.Eventually(t, func() bool {
		active := f.service.ListActive()
		if len(active) == 0 {
			return false
		}
		sessionID = active[0].SessionID
		return true
	}, 5*time.Second, time.Millisecond)

	stopped := make(chan bool, 1)
	go func() {
		stopped <- f.service.Stop(sessionID)
	}()
	close(gate)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return after the first cycle failed")
	}
	require.Error(t, <-startErr)
	require.Empty(t, f.service.ListActive())
}

func TestUnknownStatIdentifiersPassThrough(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	snapshot := liveSnapshot(101, 7, 0)
	snapshot.Stats = []FixtureStatLine{{
		Identifier: "defensive_contribution",
		Away:       []StatElementValue{{PlayerID: 42, Value: 2}},
	}}
	f.client.setSnapshots(7, []FixtureSnapshot{snapshot})

	_, err := f.service.Start(context.Background(), 7, 0)
	require.NoError(t, err)

	events, err := f.events.ListRecent(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "defensive_contribution", events[0].Type)
	require.Equal(t, 2, events[0].Delta)
	require.Equal(t, fixture.SideAway, events[0].Side)
}
