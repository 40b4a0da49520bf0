package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/content-platform-api/internal/api"
	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/repository/memory"
	"github.com/content-platform-api/internal/service"
	"github.com/content-platform-api/pkg/logger"
)

// NewServeCmd creates the serve subcommand
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return oops.In("serve").Wrap(err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	addOverrideFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("store", cfg.Store).Msg("Starting content platform API server...")

	repos, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open storage")
		return err
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	services := service.NewServices(repos, cfg, log, metrics)
	router := api.NewRouter(services, cfg, log, metrics)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error().Err(err).Msg("Server failed")
			return oops.In("serve").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}

// openStore builds the repositories for the configured backend
func openStore(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return memory.New().Repositories(), func() {}, nil
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, oops.In("serve").With("host", cfg.Database.Host).Wrap(err)
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, oops.In("serve").With("migrations", cfg.MigrationsPath).Wrap(err)
	}
	return repository.New(db), func() { db.Close() }, nil
}
