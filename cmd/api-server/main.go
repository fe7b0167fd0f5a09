package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"movielog-server/internal/charts"
	"movielog-server/internal/config"
	"movielog-server/internal/deps"
	"movielog-server/internal/export"
	"movielog-server/internal/jobs"
	"movielog-server/internal/logging"
	"movielog-server/internal/migrate"
	"movielog-server/internal/repos"
	"movielog-server/internal/search"
	"movielog-server/internal/server"
	"movielog-server/pkg/cache"
	pkgdb "movielog-server/pkg/db"
	pkghttpx "movielog-server/pkg/httpx"
	"movielog-server/pkg/tmdb"
)

const serviceName = "movielog-server"

func main() {
	_ = godotenv.Load() // best-effort
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	closer := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	defer closer.Close()
	pkghttpx.ExposeErrors(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	c := newCache(cfg)
	if cl, ok := c.(interface{ Close() }); ok {
		defer cl.Close()
	}

	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("no TMDB API key configured, movie search will fail")
	}
	client := tmdb.New(cfg.TMDBAPIKey)
	client.BaseURL = cfg.TMDBBaseURL
	client.Language = cfg.TMDBLanguage
	client.Client.Timeout = cfg.TMDBTimeout
	provider := tmdb.NewBreaker(client, tmdb.BreakerConfig{})

	chartOpts := charts.DefaultOptions()
	chartOpts.Threshold = cfg.ChartOtherThreshold

	d := deps.ServerDeps{
		Store:    repos.New(pool),
		Search:   search.NewAggregator(provider, cfg.SearchPages),
		Provider: provider,
		Cache:    c,
		CacheTTL: cfg.CacheTTL,
		APIKey:   cfg.ValidAPIKey,
		Feed: export.FeedInfo{
			Title:       cfg.RSSTitle,
			Description: cfg.RSSDescription,
			BaseURL:     cfg.BaseURL,
		},
		Charts:    chartOpts,
		Name:      serviceName,
		Env:       cfg.Env,
		StartedAt: time.Now(),
	}
	api := server.New(d, server.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	addr := ":" + cfg.Port
	sup := server.NewSupervisor(serviceName)
	sup.Add(server.NewHTTPService(addr, api.Router(), 10*time.Second))
	if mem, ok := c.(*cache.InMemoryCache); ok {
		sup.Add(jobs.NewCachePruner(mem, cfg.CacheTTL))
	}

	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := sup.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("supervisor stopped")
		os.Exit(1)
	}
	log.Info().Msg("shut down")
}

// newCache picks the response cache: none unless enabled, Valkey when an
// address is configured, in-memory otherwise.
func newCache(cfg config.Config) cache.Cache {
	if !cfg.CacheEnabled {
		return cache.Nop{}
	}
	if cfg.ValkeyAddr == "" {
		return cache.NewInMemory()
	}
	vc, err := cache.NewValkey(cfg.ValkeyAddr, cfg.ValkeyPassword)
	if err != nil {
		log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
		return cache.NewInMemory()
	}
	return vc
}
