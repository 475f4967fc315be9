package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ardhisaif/fpl-live-sync/external/fpl"
	"github.com/ardhisaif/fpl-live-sync/internal/config"
	"github.com/ardhisaif/fpl-live-sync/internal/infrastructure/repository/postgres"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/resilience"
	"github.com/ardhisaif/fpl-live-sync/internal/usecase"
)

// App wires the upstream client, the snapshot store, and the services that
// run on top of them.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	DB        *sqlx.DB
	Bootstrap *usecase.BootstrapService
	Poller    *usecase.PollerService
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	client := fpl.NewClient(fpl.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FPLTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:        cfg.FPLBaseURL,
		Timeout:        cfg.FPLTimeout,
		MaxRetries:     cfg.FPLMaxRetries,
		RetryBaseDelay: cfg.FPLRetryBaseDelay,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})

	teams := postgres.NewTeamRepository(db)
	players := postgres.NewPlayerRepository(db)
	gameweeks := postgres.NewGameweekRepository(db)
	fixtures := postgres.NewFixtureRepository(db)
	liveStats := postgres.NewLiveStatRepository(db)
	rawStats := postgres.NewRawStatRepository(db)
	events := postgres.NewEventRepository(db)

	bootstrap, err := usecase.NewBootstrapService(usecase.BootstrapServiceConfig{
		Client:    client,
		Teams:     teams,
		Players:   players,
		Gameweeks: gameweeks,
		Logger:    logger,
		Workers:   cfg.SyncWorkers,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build bootstrap service: %w", err)
	}

	poller, err := usecase.NewPollerService(usecase.PollerServiceConfig{
		Client:    client,
		Gameweeks: gameweeks,
		Fixtures:  fixtures,
		LiveStats: liveStats,
		RawStats:  rawStats,
		Events:    events,
		Logger:    logger,
		Interval:  cfg.PollInterval,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build poller service: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Bootstrap: bootstrap,
		Poller:    poller,
	}, nil
}

func (a *App) Close() error {
	a.Poller.StopAll()
	return a.DB.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn, dbName := dbConnSettings(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBName(dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
