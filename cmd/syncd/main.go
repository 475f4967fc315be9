package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardhisaif/fpl-live-sync/internal/app"
	"github.com/ardhisaif/fpl-live-sync/internal/config"
	"github.com/ardhisaif/fpl-live-sync/internal/observability"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := application.Bootstrap.Sync(ctx)
	if err != nil {
		logger.Error("bootstrap sync failed", "error", err)
		os.Exit(1)
	}

	windows := cfg.PollGameweeks
	if len(windows) == 0 && result.CurrentGameweek > 0 {
		windows = []int{result.CurrentGameweek}
	}
	started := 0
	for _, gameweekID := range windows {
		status, err := application.Poller.Start(ctx, gameweekID, cfg.PollInterval)
		if err != nil {
			logger.Error("start poll session", "gameweek_id", gameweekID, "error", err)
			continue
		}
		started++
		logger.Info("poll session running",
			"session_id", status.SessionID,
			"gameweek_id", status.GameweekID,
		)
	}
	if started == 0 {
		logger.Warn("no poll sessions running", "requested", len(windows))
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if err := application.Close(); err != nil {
		logger.Error("close app", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.StopPprofServer(pprofServer, logger, 5*time.Second); err != nil {
		logger.Error("stop pprof server", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}

	logger.Info("sync daemon stopped")
}
