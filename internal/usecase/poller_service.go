package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/event"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/id"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

const defaultPollInterval = 60 * time.Second

// SessionStatus is a point-in-time snapshot of one poll session.
type SessionStatus struct {
	SessionID     string
	GameweekID    int
	Interval      time.Duration
	StartedAt     time.Time
	LastCycleAt   time.Time
	Cycles        int
	EventsEmitted int
	TrackedStats  int
	LastError     string
	Finished      bool
}

type PollerServiceConfig struct {
	Client    UpstreamClient
	Gameweeks gameweek.Repository
	Fixtures  fixture.Repository
	LiveStats livestat.Repository
	RawStats  rawstat.Repository
	Events    event.Repository
	IDGen     id.Generator
	Logger    *logging.Logger
	Interval  time.Duration
	Now       func() time.Time
}

// PollerService runs one polling loop per gameweek. Each session fetches the
// upstream on a fixed delay, persists snapshots, and turns cumulative stat
// movements into appended events.
type PollerService struct {
	client    UpstreamClient
	gameweeks gameweek.Repository
	fixtures  fixture.Repository
	liveStats livestat.Repository
	rawStats  rawstat.Repository
	events    event.Repository
	idGen     id.Generator
	logger    *logging.Logger
	interval  time.Duration
	now       func() time.Time

	// sessions is keyed by the opaque session id; windows indexes the same
	// sessions by gameweek so a second start for a running window is rejected.
	sessions *xsync.Map[string, *pollSession]
	windows  *xsync.Map[int, *pollSession]
}

type pollSession struct {
	id         string
	gameweekID int
	interval   time.Duration
	tracker    *DeltaTracker
	cancel     context.CancelFunc
	done       chan struct{}

	mu            sync.Mutex
	startedAt     time.Time
	lastCycleAt   time.Time
	cycles        int
	eventsEmitted int
	lastErr       error
	finished      bool
}

func NewPollerService(cfg PollerServiceConfig) (*PollerService, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: upstream client is required", ErrInvalidInput)
	}
	if cfg.Gameweeks == nil || cfg.Fixtures == nil || cfg.LiveStats == nil || cfg.RawStats == nil || cfg.Events == nil {
		return nil, fmt.Errorf("%w: repositories are required", ErrInvalidInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &PollerService{
		client:    cfg.Client,
		gameweeks: cfg.Gameweeks,
		fixtures:  cfg.Fixtures,
		liveStats: cfg.LiveStats,
		rawStats:  cfg.RawStats,
		events:    cfg.Events,
		idGen:     idGen,
		logger:    logger,
		interval:  interval,
		now:       now,
		sessions:  xsync.NewMap[string, *pollSession](),
		windows:   xsync.NewMap[int, *pollSession](),
	}, nil
}

// Start registers a session for the gameweek and runs the first poll cycle
// synchronously. A failing first cycle unregisters the session and returns
// the error; only a session whose first cycle succeeded keeps polling. An
// interval of zero or less falls back to the service-wide default.
func (s *PollerService) Start(ctx context.Context, gameweekID int, interval time.Duration) (SessionStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "PollerService.Start")
	defer span.End()

	if gameweekID <= 0 {
		return SessionStatus{}, fmt.Errorf("%w: gameweek id must be greater than zero", ErrInvalidInput)
	}
	if interval <= 0 {
		interval = s.interval
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return SessionStatus{}, fmt.Errorf("generate session id: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	session := &pollSession{
		id:         sessionID,
		gameweekID: gameweekID,
		interval:   interval,
		tracker:    NewDeltaTracker(),
		cancel:     cancel,
		done:       make(chan struct{}),
		startedAt:  s.now(),
	}

	if existing, loaded := s.windows.LoadOrStore(gameweekID, session); loaded {
		cancel()
		return SessionStatus{}, fmt.Errorf("%w: gameweek_id=%d session_id=%s", ErrSessionExists, gameweekID, existing.id)
	}
	s.sessions.Store(sessionID, session)

	baseline, err := s.rawStats.ListByGameweek(ctx, gameweekID)
	if err != nil {
		s.discard(session)
		return SessionStatus{}, fmt.Errorf("seed baseline gameweek_id=%d: %w", gameweekID, err)
	}
	session.tracker.Seed(baseline)

	if err := s.runCycle(ctx, session); err != nil {
		s.discard(session)
		return SessionStatus{}, fmt.Errorf("first poll cycle gameweek_id=%d: %w", gameweekID, err)
	}

	s.logger.InfoContext(ctx, "poll session started",
		"session_id", session.id,
		"gameweek_id", gameweekID,
		"interval", interval,
		"seeded_stats", len(baseline),
	)

	go s.loop(loopCtx, session)
	return s.snapshot(session), nil
}

// discard tears down a session whose loop never launched. Closing done here
// releases any Stop that raced the failed first cycle and is already waiting.
func (s *PollerService) discard(session *pollSession) {
	s.sessions.Delete(session.id)
	s.releaseWindow(session)
	session.cancel()
	close(session.done)
}

// releaseWindow removes the gameweek index entry, but only while it still
// points at this session, so a replacement started after a Stop is untouched.
func (s *PollerService) releaseWindow(session *pollSession) {
	if current, ok := s.windows.Load(session.gameweekID); ok && current == session {
		s.windows.Delete(session.gameweekID)
	}
}

// Stop cancels the session's loop, waits for it to exit, and drops the delta
// cache with it. Stopping an unknown session id is a no-op returning false.
func (s *PollerService) Stop(sessionID string) bool {
	session, ok := s.sessions.LoadAndDelete(sessionID)
	if !ok {
		return false
	}

	s.releaseWindow(session)
	session.cancel()
	<-session.done
	s.logger.Info("poll session stopped", "session_id", session.id, "gameweek_id", session.gameweekID)
	return true
}

// StopAll stops every active session.
func (s *PollerService) StopAll() {
	s.sessions.Range(func(sessionID string, _ *pollSession) bool {
		s.Stop(sessionID)
		return true
	})
}

func (s *PollerService) ListActive() []SessionStatus {
	out := make([]SessionStatus, 0)
	s.sessions.Range(func(_ string, session *pollSession) bool {
		out = append(out, s.snapshot(session))
		return true
	})
	return out
}

func (s *PollerService) Status(sessionID string) (SessionStatus, bool) {
	session, ok := s.sessions.Load(sessionID)
	if !ok {
		return SessionStatus{}, false
	}
	return s.snapshot(session), true
}

func (s *PollerService) loop(ctx context.Context, session *pollSession) {
	defer close(session.done)

	for {
		timer := time.NewTimer(session.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.runCycle(ctx, session); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.ErrorContext(ctx, "poll cycle failed",
				"session_id", session.id,
				"gameweek_id", session.gameweekID,
				"error", err,
			)
		}
	}
}

func (s *PollerService) runCycle(ctx context.Context, session *pollSession) (err error) {
	ctx, span := startUsecaseSpan(ctx, "PollerService.runCycle")
	defer span.End()

	defer func() {
		session.mu.Lock()
		session.cycles++
		session.lastCycleAt = s.now()
		session.lastErr = err
		session.mu.Unlock()
	}()

	var (
		snapshots []FixtureSnapshot
		stats     []livestat.PlayerStat
		statuses  []GameweekStatus
	)

	fetch := pool.New().WithContext(ctx).WithCancelOnError()
	fetch.Go(func(ctx context.Context) error {
		var fetchErr error
		snapshots, fetchErr = s.client.FetchFixtures(ctx, session.gameweekID)
		return fetchErr
	})
	fetch.Go(func(ctx context.Context) error {
		var fetchErr error
		stats, fetchErr = s.client.FetchLiveStats(ctx, session.gameweekID)
		return fetchErr
	})
	fetch.Go(func(ctx context.Context) error {
		var fetchErr error
		statuses, fetchErr = s.client.FetchEventStatus(ctx)
		return fetchErr
	})
	if err := fetch.Wait(); err != nil {
		return fmt.Errorf("fetch upstream: %w", err)
	}

	fixtures := make([]fixture.Fixture, 0, len(snapshots))
	for _, snapshot := range snapshots {
		fixtures = append(fixtures, snapshot.Fixture)
	}
	if err := s.fixtures.UpsertFixtures(ctx, fixtures); err != nil {
		return fmt.Errorf("persist fixtures: %w", err)
	}
	if err := s.liveStats.UpsertStats(ctx, stats); err != nil {
		return fmt.Errorf("persist live stats: %w", err)
	}

	emitted, err := s.applyDeltas(ctx, session, snapshots)
	if err != nil {
		return err
	}
	if emitted > 0 {
		session.mu.Lock()
		session.eventsEmitted += emitted
		session.mu.Unlock()
	}

	if err := s.updateWindowStatus(ctx, session, fixtures, statuses); err != nil {
		return err
	}

	s.diagnose(ctx, session, fixtures, stats)
	return nil
}

// applyDeltas diffs the reported cumulative stat lines against the session
// baseline, appends one event per positive movement, and persists the new
// baseline values.
func (s *PollerService) applyDeltas(ctx context.Context, session *pollSession, snapshots []FixtureSnapshot) (int, error) {
	observedAt := s.now().UTC()
	batch := make([]event.Event, 0, 16)
	baseline := make([]rawstat.Value, 0, 64)

	for _, snapshot := range snapshots {
		if !snapshot.Fixture.Active() {
			continue
		}
		for _, line := range snapshot.Stats {
			if !event.KnownType(line.Identifier) {
				s.logger.DebugContext(ctx, "passing through unknown stat identifier",
					"session_id", session.id,
					"fixture_id", snapshot.Fixture.ID,
					"identifier", line.Identifier,
				)
			}
			for _, side := range [2]string{fixture.SideHome, fixture.SideAway} {
				values := line.Home
				if side == fixture.SideAway {
					values = line.Away
				}
				for _, value := range values {
					delta := session.tracker.Apply(snapshot.Fixture.ID, line.Identifier, side, value.PlayerID, value.Value)
					baseline = append(baseline, rawstat.Value{
						FixtureID:  snapshot.Fixture.ID,
						GameweekID: session.gameweekID,
						Identifier: line.Identifier,
						Side:       side,
						PlayerID:   value.PlayerID,
						Value:      value.Value,
					})

					if delta < 0 {
						s.logger.WarnContext(ctx, "cumulative stat decreased, skipping event",
							"session_id", session.id,
							"fixture_id", snapshot.Fixture.ID,
							"identifier", line.Identifier,
							"player_id", value.PlayerID,
							"delta", delta,
						)
						continue
					}
					if delta == 0 {
						continue
					}

					batch = append(batch, event.Event{
						GameweekID: session.gameweekID,
						FixtureID:  snapshot.Fixture.ID,
						Type:       line.Identifier,
						PlayerID:   value.PlayerID,
						Delta:      delta,
						Side:       side,
						OccurredAt: observedAt,
					})
				}
			}
		}
	}

	if err := s.events.Append(ctx, batch); err != nil {
		return 0, fmt.Errorf("append events: %w", err)
	}
	if err := s.rawStats.UpsertValues(ctx, baseline); err != nil {
		return 0, fmt.Errorf("persist stat baseline: %w", err)
	}

	if len(batch) > 0 {
		s.logger.InfoContext(ctx, "events emitted",
			"session_id", session.id,
			"gameweek_id", session.gameweekID,
			"count", len(batch),
		)
	}
	return len(batch), nil
}

// updateWindowStatus records the gameweek's completion flags: bonus comes
// from event-status, data checked is derived from the fixture list itself.
func (s *PollerService) updateWindowStatus(ctx context.Context, session *pollSession, fixtures []fixture.Fixture, statuses []GameweekStatus) error {
	bonusAdded := false
	found := false
	for _, status := range statuses {
		if status.GameweekID == session.gameweekID {
			bonusAdded = status.BonusAdded
			found = true
			break
		}
	}
	if !found {
		// Event-status only covers the window in play; fall back to the
		// stored flag so a settled gameweek never regresses.
		stored, ok, err := s.gameweeks.GetByID(ctx, session.gameweekID)
		if err != nil {
			return fmt.Errorf("load gameweek status: %w", err)
		}
		if ok {
			bonusAdded = stored.BonusAdded
		}
	}

	dataChecked := len(fixtures) > 0
	for _, item := range fixtures {
		if !item.Finished {
			dataChecked = false
			break
		}
	}

	status := gameweek.Gameweek{ID: session.gameweekID, BonusAdded: bonusAdded, DataChecked: dataChecked}
	if err := s.gameweeks.UpsertStatuses(ctx, []gameweek.Gameweek{status}); err != nil {
		return fmt.Errorf("persist gameweek status: %w", err)
	}

	session.mu.Lock()
	session.finished = status.Finished()
	session.mu.Unlock()
	return nil
}

// diagnose flags snapshot combinations that indicate stale or inconsistent
// upstream data. These are warnings only; the cycle itself has succeeded.
func (s *PollerService) diagnose(ctx context.Context, session *pollSession, fixtures []fixture.Fixture, stats []livestat.PlayerStat) {
	started := 0
	activeWithoutMinutes := 0
	for _, item := range fixtures {
		if item.Started {
			started++
		}
		if item.Active() && item.MinutesElapsed == 0 {
			activeWithoutMinutes++
		}
	}

	reportedMinutes := 0
	for _, stat := range stats {
		if stat.Minutes > 0 {
			reportedMinutes++
		}
	}

	if started == 0 && reportedMinutes > 0 {
		s.logger.WarnContext(ctx, "live stats reported with no started fixtures",
			"session_id", session.id,
			"gameweek_id", session.gameweekID,
			"players_with_minutes", reportedMinutes,
		)
	}
	if activeWithoutMinutes > 0 {
		s.logger.WarnContext(ctx, "active fixtures report no elapsed minutes",
			"session_id", session.id,
			"gameweek_id", session.gameweekID,
			"fixtures", activeWithoutMinutes,
		)
	}
}

func (s *PollerService) snapshot(session *pollSession) SessionStatus {
	session.mu.Lock()
	defer session.mu.Unlock()

	status := SessionStatus{
		SessionID:     session.id,
		GameweekID:    session.gameweekID,
		Interval:      session.interval,
		StartedAt:     session.startedAt,
		LastCycleAt:   session.lastCycleAt,
		Cycles:        session.cycles,
		EventsEmitted: session.eventsEmitted,
		TrackedStats:  session.tracker.Size(),
		Finished:      session.finished,
	}
	if session.lastErr != nil {
		status.LastError = session.lastErr.Error()
	}
	return status
}
