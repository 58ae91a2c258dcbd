package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/syncroom/syncroom"
	"github.com/syncroom/syncroom/experience"
	"github.com/syncroom/syncroom/internal/api"
	"github.com/syncroom/syncroom/internal/config"
	"github.com/syncroom/syncroom/logging"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting syncroom server")

	sr := syncroom.New(func(o *syncroom.Options) {
		o.Experience = experience.NewBuiltin()
		o.Logger = logging.NewZerologAdapter(logger.With().Str("component", "engine").Logger())
	})

	router := api.NewRouter(logger, sr, cfg.BrowserBaseURL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Long polls block up to 55s; leave headroom before cutting writes.
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogFormat == "console" || cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	} else {
		logger = zerolog.New(os.Stderr).Level(level)
	}
	return logger.With().Timestamp().Logger()
}
