package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/catalog/internal/catalog"
	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	sessionredis "github.com/JonMunkholm/catalog/internal/session/redis"
	"github.com/JonMunkholm/catalog/internal/store/memory"
	"github.com/JonMunkholm/catalog/internal/store/postgres"
	"github.com/JonMunkholm/catalog/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"sessions", cfg.Session.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open catalog store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	service := core.NewService(store, sessions, core.Options{
		MaxFileSize:   cfg.Import.MaxFileSize,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWaitTime:   cfg.Import.MaxWaitTime,
		ImportTimeout: cfg.Import.Timeout,
		SessionTTL:    cfg.Session.TTL,
	})

	kinds := service.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k.Kind)
	}
	slog.Info("import kinds registered", "kinds", strings.Join(names, ","))

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Session.SweepInterval)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		return
	}
	slog.Info("server stopped")
}

// openStore connects the catalog store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, func(), error) {
	if !strings.EqualFold(cfg.Store.Driver, "postgres") {
		slog.Info("using in-memory catalog store")
		return memory.New(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("database schema applied")
	}

	return postgres.New(pool), pool.Close, nil
}

// openSessions creates the import session store selected by SESSION_DRIVER.
func openSessions(ctx context.Context, cfg *config.Config) (core.SessionStore, func(), error) {
	if !strings.EqualFold(cfg.Session.Driver, "redis") {
		return core.NewMemorySessionStore(), func() {}, nil
	}

	client, err := sessionredis.NewClient(ctx, sessionredis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("connected to redis", "addr", cfg.Session.RedisAddr, "db", cfg.Session.RedisDB)

	closeClient := func() {
		if err := client.Close(); err != nil {
			slog.Warn("close redis client", "error", err)
		}
	}
	return sessionredis.NewSessionStore(client, cfg.Session.TTL), closeClient, nil
}
