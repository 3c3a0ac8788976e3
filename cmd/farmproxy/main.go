// cmd/farmproxy/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/oauth2"

	"github.com/aquatrack/farmclient/cache"
	"github.com/aquatrack/farmclient/farmapi"
	"github.com/aquatrack/farmclient/internal/config"
	"github.com/aquatrack/farmclient/internal/metrics"
	"github.com/aquatrack/farmclient/internal/proxy"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	metrics.Init()

	store := cache.New(cfg.CacheCapacity,
		cache.WithMetrics(metrics.Collector{}),
		cache.WithSweepInterval(cfg.SweepInterval),
	)
	defer store.Close()

	clientOpts := []farmapi.Option{
		farmapi.WithCache(store, cfg.CacheTTL),
		farmapi.WithLogger(logger),
	}
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
		clientOpts = append(clientOpts, farmapi.WithTokenSource(ts))
	}
	client, err := farmapi.New(cfg.BaseURL, clientOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("client setup failed")
	}

	s := proxy.New(proxy.ServerOptions{Client: client, Logger: logger})
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: h}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("backend", cfg.BaseURL).Msg("farmproxy listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("farmproxy stopped")
}
