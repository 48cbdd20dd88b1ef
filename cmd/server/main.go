package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pagewatch/internal/config"
	"pagewatch/internal/db"
	"pagewatch/internal/email"
	"pagewatch/internal/fetch"
	"pagewatch/internal/jobs"
	"pagewatch/internal/metrics"
	"pagewatch/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := cfg.NewLogger()
	slog.SetDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info("migrations completed")

	if err := seedTargets(ctx, database, log); err != nil {
		return err
	}

	metrics.Init(database)

	fetcher := fetch.New(fetch.Options{
		Timeout:      cfg.FetchTimeout,
		MaxBytes:     cfg.FetchMaxBytes,
		UserAgent:    cfg.FetchUserAgent,
		AllowPrivate: cfg.FetchAllowPrivate,
	})
	notifier := jobs.NewAlertNotifier(database, email.NewNotifier(cfg, log), log)
	runner := jobs.NewRunner(fetcher, database, notifier, cfg.MonitorConcurrency, log)

	if cfg.MonitorEnabled {
		monitor, err := jobs.NewMonitor(database, runner, cfg.MonitorSchedule, cfg.MonitorBatchSize, log)
		if err != nil {
			return err
		}
		go monitor.Start(ctx)
	} else {
		log.Info("monitor disabled")
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		return err
	}
	if err := srv.RegisterRoutes(ctx, database, runner); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	return srv.Shutdown()
}

// seedTargets upserts the targets declared in the YAML config file.
func seedTargets(ctx context.Context, database *db.DB, log *slog.Logger) error {
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return err
	}

	targets, err := yamlCfg.SeedTargets()
	if err != nil {
		return err
	}

	for i := range targets {
		if err := database.UpsertTargetByName(ctx, &targets[i]); err != nil {
			return err
		}
	}
	if len(targets) > 0 {
		log.Info("seeded targets from config file", "count", len(targets))
	}
	return nil
}
