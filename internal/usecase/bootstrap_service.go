package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/player"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/team"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

const (
	defaultSyncWorkers     = 4
	defaultPlayerChunkSize = 200
)

// BootstrapResult summarizes one reference-data sync. CurrentGameweek is the
// lowest window not yet settled upstream, or zero when the season is over.
type BootstrapResult struct {
	Teams           int
	Players         int
	Gameweeks       int
	CurrentGameweek int
	DurationMs      int64
}

type BootstrapServiceConfig struct {
	Client    UpstreamClient
	Teams     team.Repository
	Players   player.Repository
	Gameweeks gameweek.Repository
	Logger    *logging.Logger
	Workers   int
	ChunkSize int
}

// BootstrapService refreshes reference data from the upstream's static pull:
// teams, the player roster, and per-gameweek completion flags.
type BootstrapService struct {
	client    UpstreamClient
	teams     team.Repository
	players   player.Repository
	gameweeks gameweek.Repository
	logger    *logging.Logger
	workers   int
	chunkSize int
}

func NewBootstrapService(cfg BootstrapServiceConfig) (*BootstrapService, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: upstream client is required", ErrInvalidInput)
	}
	if cfg.Teams == nil || cfg.Players == nil || cfg.Gameweeks == nil {
		return nil, fmt.Errorf("%w: repositories are required", ErrInvalidInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultSyncWorkers
	}
	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = defaultPlayerChunkSize
	}

	return &BootstrapService{
		client:    cfg.Client,
		teams:     cfg.Teams,
		players:   cfg.Players,
		gameweeks: cfg.Gameweeks,
		logger:    logger,
		workers:   workers,
		chunkSize: chunkSize,
	}, nil
}

func (s *BootstrapService) Sync(ctx context.Context) (BootstrapResult, error) {
	ctx, span := startUsecaseSpan(ctx, "BootstrapService.Sync")
	defer span.End()

	start := time.Now()
	bootstrap, err := s.client.FetchBootstrap(ctx)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	if err := s.teams.UpsertTeams(ctx, bootstrap.Teams); err != nil {
		return BootstrapResult{}, fmt.Errorf("persist teams: %w", err)
	}
	if err := s.gameweeks.UpsertStatuses(ctx, bootstrap.Gameweeks); err != nil {
		return BootstrapResult{}, fmt.Errorf("persist gameweek statuses: %w", err)
	}
	if err := s.upsertPlayersChunked(ctx, bootstrap.Players); err != nil {
		return BootstrapResult{}, err
	}

	result := BootstrapResult{
		Teams:      len(bootstrap.Teams),
		Players:    len(bootstrap.Players),
		Gameweeks:  len(bootstrap.Gameweeks),
		DurationMs: time.Since(start).Milliseconds(),
	}
	for _, window := range bootstrap.Gameweeks {
		if window.Finished() {
			continue
		}
		if result.CurrentGameweek == 0 || window.ID < result.CurrentGameweek {
			result.CurrentGameweek = window.ID
		}
	}
	s.logger.InfoContext(ctx, "bootstrap sync completed",
		"teams", result.Teams,
		"players", result.Players,
		"gameweeks", result.Gameweeks,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// upsertPlayersChunked writes the roster in parallel chunks. The chunks are
// disjoint id ranges, so concurrent upserts never contend on the same row.
func (s *BootstrapService) upsertPlayersChunked(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	var firstErr atomic.Pointer[error]

	for offset := 0; offset < len(players); offset += s.chunkSize {
		end := offset + s.chunkSize
		if end > len(players) {
			end = len(players)
		}
		chunk := players[offset:end]

		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			if err := s.players.UpsertPlayers(ctx, chunk); err != nil {
				firstErr.CompareAndSwap(nil, &err)
			}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit player chunk to worker pool: %w", err)
		}
	}

	workers.Wait()
	if errPtr := firstErr.Load(); errPtr != nil {
		return fmt.Errorf("persist players: %w", *errPtr)
	}
	return nil
}
