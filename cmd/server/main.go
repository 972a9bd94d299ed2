// Command server loads the trained model artifacts and serves the
// prediction API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wellsync/wellsync-ai/internal/api"
	"github.com/wellsync/wellsync-ai/pkg/config"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/serving"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger := log.GetLoggerWithName("server")

	registry := serving.Load(cfg.Models.Dir)
	available := registry.Available()
	if len(available) == 0 {
		logger.Warn().Str("dir", cfg.Models.Dir).Msg("no models loaded; every prediction endpoint will return 503")
	}
	logger.Info().Strs("tasks", available).Msg("registry ready")

	app := api.New(registry, cfg.Server)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-done
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
