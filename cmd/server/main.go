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
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/outreach/internal/campaign"
	"github.com/JonMunkholm/outreach/internal/config"
	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/logging"
	"github.com/JonMunkholm/outreach/internal/preview"
	"github.com/JonMunkholm/outreach/internal/web"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run starts the server and blocks until it stops. Errors are logged before
// they are returned.
func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.Debug("configuration", "config", cfg.String())

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"default_country", cfg.Contacts.DefaultCountry,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"backend_configured", cfg.Backend.URL != "",
	)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open preview store", "error", err)
		return err
	}
	defer closeStore()

	var backend core.CampaignBackend
	if cfg.Backend.URL != "" {
		backend = campaign.NewClient(cfg.Backend.URL, nil, cfg.Backend.Timeout)
	} else {
		slog.Warn("CAMPAIGN_API_URL not set, uploads and live progress are disabled")
	}

	service := core.NewService(core.ServiceConfig{
		DefaultCountry: cfg.Contacts.DefaultCountry,
		FuzzyThreshold: cfg.Contacts.FuzzyThreshold,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		MaxConcurrent:  cfg.Upload.MaxConcurrent,
		MaxWait:        cfg.Upload.MaxWaitTime,
	}, preview.NewCache(store, cfg.Contacts.PreviewLimit), backend)

	server := web.NewServer(service, cfg)

	// Background jobs stop on shutdown
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	if pruner, ok := store.(core.Pruner); ok {
		go core.RunPreviewPruner(jobCtx, pruner, core.PruneConfig{
			MaxAge:        cfg.Database.PreviewTTL,
			CheckInterval: cfg.Database.PruneInterval,
		})
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigCh:
		case <-jobCtx.Done():
			return
		}

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight parses to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		<-done
		_ = server.Shutdown(context.Background())
		return err
	}
	<-done
	slog.Info("server stopped")
	return nil
}

// openStore picks the preview store: Postgres when DATABASE_URL is set,
// then Redis when REDIS_URL is set, otherwise process memory.
func openStore(ctx context.Context, cfg *config.Config) (preview.Store, func(), error) {
	switch {
	case cfg.Database.URL != "":
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

		store := preview.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("preview store: postgres", "database", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("preview store: postgres")
		}
		return store, pool.Close, nil

	case cfg.Redis.URL != "":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		slog.Info("preview store: redis", "addr", opts.Addr, "ttl", cfg.Redis.PreviewTTL)
		return preview.NewRedisStore(client, cfg.Redis.Namespace, cfg.Redis.PreviewTTL), func() { client.Close() }, nil

	default:
		slog.Warn("no DATABASE_URL or REDIS_URL set, previews are kept in memory")
		return preview.NewMemoryStore(), func() {}, nil
	}
}
