package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockops/stock-console/internal/auth"
	"github.com/stockops/stock-console/internal/client"
	"github.com/stockops/stock-console/internal/config"
	"github.com/stockops/stock-console/internal/db"
	gatewayhttp "github.com/stockops/stock-console/internal/http"
	"github.com/stockops/stock-console/internal/http/handlers"
	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/logger"
	"github.com/stockops/stock-console/internal/redissvc"
	"github.com/stockops/stock-console/internal/repo"
)

func main() {
	configFile := flag.String("config", "", "path to optional config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		bootLog := logger.New("production", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	// Token source: static token when provisioned, otherwise login for an
	// access/refresh pair against the upstream token endpoints.
	var tokens auth.TokenSource
	var onUnauthorized func()
	if cfg.Upstream.Token != "" {
		tokens = auth.NewStaticTokenSource(cfg.Upstream.Token)
	} else {
		refreshing := auth.NewRefreshingTokenSource(cfg.Upstream.BaseURL, nil, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := refreshing.Login(ctx, cfg.Upstream.Username, cfg.Upstream.Password); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("upstream login failed")
		}
		cancel()
		tokens = refreshing
		onUnauthorized = refreshing.Invalidate
	}

	opts := []client.Option{
		client.WithLogger(log),
		client.WithRateLimit(cfg.Upstream.RateLimit, cfg.Upstream.Burst),
	}
	if onUnauthorized != nil {
		opts = append(opts, client.WithUnauthorizedHook(onUnauthorized))
	}
	upstream := client.New(cfg.Upstream.BaseURL, tokens, opts...)

	store := ledger.NewStore(upstream, ledger.WithLogger(log))

	var journal repo.JournalRepository = repo.NewInMemoryJournalRepository()
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer conn.Close()

		journal, err = repo.NewPostgresJournalRepository(conn)
		if err != nil {
			log.Fatal().Err(err).Msg("could not prepare movement journal")
		}
		log.Info().Msg("movement journal backed by postgres")
	}

	var cache *redissvc.SummaryCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("could not connect to redis")
		}
		cancel()
		defer rdb.Close()

		cache = redissvc.NewSummaryCache(rdb, cfg.SummaryTTL, log)
		log.Info().Dur("ttl", cfg.SummaryTTL).Msg("summary cache enabled")
	}

	server := handlers.NewServer(store, journal, cache, log)
	router := gatewayhttp.NewRouter(server, cfg.HTTP.JWTSecret, cfg.HTTP.CORSOrigins)

	// Warm the projection so the first front-end request is served from
	// state. Failures are non-fatal; the front ends can refresh explicitly.
	warmCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.FetchStocks(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial stock fetch failed")
	}
	if err := store.FetchProducts(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial product fetch failed")
	}
	if err := store.FetchMovements(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial movement fetch failed")
	}
	cancel()

	log.Info().Str("addr", cfg.HTTP.Addr).Str("upstream", cfg.Upstream.BaseURL).Msg("gateway listening")
	if err := http.ListenAndServe(cfg.HTTP.Addr, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
