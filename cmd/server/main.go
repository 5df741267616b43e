package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/api"
	"github.com/yash-miyani/natours/internal/core/ports"
	"github.com/yash-miyani/natours/internal/infrastructure/config"
	mongodb "github.com/yash-miyani/natours/internal/infrastructure/db/mongo"
	redisdb "github.com/yash-miyani/natours/internal/infrastructure/db/redis"
	"github.com/yash-miyani/natours/internal/infrastructure/email"
	"github.com/yash-miyani/natours/internal/infrastructure/ratelimit"
	"github.com/yash-miyani/natours/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	// run owns the connection lifecycle; its deferred closes fire on every
	// exit path before main terminates the process.
	if err := run(cfg, logg); err != nil {
		logg.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg zerolog.Logger) error {
	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.DSN(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logg.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()
	logg.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	if err := ensureIndexes(ctx, db); err != nil {
		return fmt.Errorf("index creation: %w", err)
	}

	rdb, limiter := buildLimiter(ctx, cfg, logg)
	if rdb != nil {
		defer rdb.Close()
	}

	mailer := email.NewSMTPMailer(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := email.NewDispatcher(4, mailer, logg)
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()
	dispatcher.Start(dispatcherCtx)

	e, err := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Log:     logg,
		DB:      db,
		Redis:   rdb,
		Limiter: limiter,
		Mailer:  dispatcher,
	})
	if err != nil {
		return fmt.Errorf("router setup: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-sigCh:
		logg.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// ensureIndexes creates every collection index up front so unique and
// geospatial constraints are in place before the first request.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	repos := []interface {
		EnsureIndexes(context.Context) error
	}{
		mongodb.NewUserRepository(db),
		mongodb.NewTourRepository(db),
		mongodb.NewReviewRepository(db),
		mongodb.NewBookingRepository(db),
	}
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

// buildLimiter prefers the Redis fixed-window limiter so limits hold across
// replicas; without Redis it falls back to the in-process one.
func buildLimiter(ctx context.Context, cfg *config.Config, logg zerolog.Logger) (*redis.Client, ports.RateLimiter) {
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			logg.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
		} else {
			logg.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
			return rdb, redisdb.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
		}
	}
	return nil, ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
}
