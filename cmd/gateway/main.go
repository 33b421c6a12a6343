package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/connectedautocare/console-gateway/api/controllers"
	"github.com/connectedautocare/console-gateway/api/middleware"
	"github.com/connectedautocare/console-gateway/api/routes"
	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/metrics"
	"github.com/connectedautocare/console-gateway/pkg/platform"
	"github.com/connectedautocare/console-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	// Token slots live in Redis when one is configured; single-node dev
	// setups fall back to the in-memory store.
	var store interface {
		Set(ctx context.Context, key string, value any, ttl time.Duration) error
		Get(ctx context.Context, key string) (string, error)
		Del(ctx context.Context, keys ...string) error
		SessionTokenKey(sessionID string) string
	}
	var storePinger controllers.Pinger
	if cfg.Redis.Configured() {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		store = redisClient
		storePinger = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, using in-memory token store")
		store = session.NewMemoryStore()
	}

	signal := session.NewSignal()

	upstreamMetrics := metrics.NewUpstreamMetrics(prometheus.DefaultRegisterer)
	client, err := platform.NewClient(platform.ClientParams{
		Config:  cfg.Platform,
		Logger:  logg,
		Metrics: upstreamMetrics,
		OnUnauthorized: func(sessionID string) {
			signal.Publish(session.ExpiryEvent{SessionID: sessionID})
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create platform client", err)
		os.Exit(1)
	}

	mgr, err := session.NewManager(session.ManagerParams{
		Store:    store,
		Keyer:    store,
		API:      client,
		Signal:   signal,
		Logger:   logg,
		TokenTTL: cfg.Session.TokenTTL(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	listener, err := session.NewListener(mgr, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry listener", err)
		os.Exit(1)
	}
	listener.Start()
	defer listener.Stop()

	guard, err := middleware.NewGuard(middleware.GuardParams{
		Manager: mgr,
		Cookies: cfg.Cookie,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create route guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"upstream": cfg.Platform.BaseURL,
	})
	logg.Info(ctx, "starting console gateway")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, mgr, client, guard, storePinger),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "console gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}
