// Command authd serves the authentication HTTP API: login, token refresh,
// logout, and the current-user endpoint, backed by Redis for credential
// records and Postgres for accounts. Metrics are exposed separately in
// Prometheus text format.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/streamforge/tubeauth"
	"github.com/streamforge/tubeauth/httpapi"
	"github.com/streamforge/tubeauth/metrics/export/prometheus"
	"github.com/streamforge/tubeauth/userstore/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("authd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	engineCfg := tubeauth.DefaultConfig()
	engineCfg.Token.AccessKey = []byte(cfg.AccessTokenSecret)
	engineCfg.Token.RefreshKey = []byte(cfg.RefreshTokenSecret)
	engineCfg.Token.AccessTTL = cfg.AccessTokenTTL
	engineCfg.Token.RefreshTTL = cfg.RefreshTokenTTL
	engineCfg.KeyPrefix = cfg.KeyPrefix
	engineCfg.ClearOnReuse = cfg.ClearOnReuse

	engine, err := tubeauth.New().
		WithConfig(engineCfg).
		WithRedis(redisClient).
		WithUserProvider(postgres.NewUserRepository(pool)).
		WithAuditSink(tubeauth.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.NewServer(engine, httpapi.Options{
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		SecureCookies: cfg.SecureCookies,
		Logger:        log,
	})

	apiServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", prometheus.NewPrometheusExporter(engine).Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("api listening", "addr", cfg.ListenAddr)
		errCh <- apiServer.ListenAndServe()
	}()
	go func() {
		log.Info("metrics listening", "addr", cfg.MetricsAddr)
		errCh <- metricsServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown", "error", err)
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
