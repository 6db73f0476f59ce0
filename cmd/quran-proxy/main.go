package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/quran-api-proxy/pkg/cache"
	"github.com/Sternrassler/quran-api-proxy/pkg/config"
	"github.com/Sternrassler/quran-api-proxy/pkg/logging"
	"github.com/Sternrassler/quran-api-proxy/pkg/metrics"
	"github.com/Sternrassler/quran-api-proxy/pkg/proxy"
	"github.com/Sternrassler/quran-api-proxy/pkg/tracing"
	"github.com/Sternrassler/quran-api-proxy/pkg/upstream"
	"github.com/rs/zerolog/log"
)

const (
	serviceName     = "quran-api-proxy"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.OTELEndpoint,
		Enabled:     cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	handler, err := newRouter(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create proxy")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", server.Addr).
		Str("upstream", cfg.BaseURL).
		Dur("cache_ttl", cfg.CacheTTL()).
		Int("max_entries", cfg.MaxCacheEntries).
		Msg("Starting Quran API proxy")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}
	log.Info().Msg("Server stopped")
}

// newRouter wires the store, fetcher and proxy handler behind the public routes.
func newRouter(cfg config.Config) (http.Handler, error) {
	fetcherCfg := upstream.DefaultConfig()
	fetcherCfg.Timeout = cfg.Timeout
	fetcherCfg.CacheTTL = cfg.CacheTTL()
	fetcherCfg.UserAgent = cfg.UserAgent
	fetcherCfg.Retry.MaxAttempts = cfg.MaxAttempts

	fetcher, err := upstream.NewFetcher(fetcherCfg)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	quranProxy, err := proxy.NewHandler(cache.NewStore(), fetcher, proxy.Config{
		BaseURL:     cfg.BaseURL,
		RoutePrefix: proxy.DefaultRoutePrefix,
		CacheTTL:    cfg.CacheTTL(),
		MaxEntries:  cfg.MaxCacheEntries,
	}, logging.NewLogger("proxy"))
	if err != nil {
		return nil, fmt.Errorf("create proxy: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle(proxy.DefaultRoutePrefix, logging.AccessLog(logging.NewLogger("http"), quranProxy))
	return mux, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
