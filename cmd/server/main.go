package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Clark-Hu/ott-radar/internal/catalog"
	"github.com/Clark-Hu/ott-radar/internal/config"
	httpserver "github.com/Clark-Hu/ott-radar/internal/http"
	"github.com/Clark-Hu/ott-radar/internal/logging"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error", "err", err)
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatal("init logger", "err", err)
	}
	defer closer.Close()

	client, err := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, tmdb.Options{
		Timeout:   time.Duration(cfg.TMDBTimeoutSecs) * time.Second,
		RateLimit: cfg.TMDBRateLimit,
		RateBurst: cfg.TMDBRateBurst,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("init tmdb client", "err", err)
	}

	svc := catalog.NewService(client, catalog.Options{
		Languages:         cfg.Languages,
		Providers:         cfg.Providers,
		Pages:             cfg.PagesToFetch,
		EnrichConcurrency: cfg.EnrichConcurrency,
		Logger:            logger,
	})
	server := httpserver.New(cfg, svc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error("server error", "err", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", "err", err)
	}
	logger.Info("stopped")
}
