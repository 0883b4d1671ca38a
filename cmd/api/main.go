package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/resonance/internal/adapters/rest"
	"github.com/ewilliams-labs/resonance/internal/app"
	"github.com/ewilliams-labs/resonance/internal/config"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

func main() {
	// 1. Configuration (defaults, config file, environment)
	// Crash early if the configuration is unusable.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	app.InitLogging(cfg)

	// 2. Load the catalog and build the engine
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recommender, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize recommender")
	}
	defer func() {
		if err := recommender.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to release resources")
		}
	}()

	// 3. Initialize the "Driving" Adapter
	handler := rest.NewHandler(recommender.Recommendations, cfg.Recommender.TopK)

	// 4. Start the Server
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("resonance API listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
			return
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
		timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown error")
		}
	}
}
