package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/container"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/rabbitmq"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "users",
		Usage: "Manage accounts of the user context",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Skip Postgres, Redis, RabbitMQ and Elasticsearch and keep state in process",
			},
		},
		Commands: append(migrationCommands(), userCommands()...),
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// bootstrap loads config and registers infra singletons in the container. The
// returned func releases them.
func bootstrap(ctx context.Context, inMemory bool) (func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	logger.SetOutput(os.Stderr) // stdout carries command output
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL))

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if inMemory {
		return cleanup, nil
	}

	// Postgres is required; the rest degrade.
	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	closers = append(closers, pool.Close)
	container.SetPGPool(pool)

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, sessions and codes kept in memory")
		_ = rdb.Close()
	} else {
		closers = append(closers, func() { _ = rdb.Close() })
		container.SetRedis(rdb)
	}

	if conn, err := rabbitmq.Dial(cfg.RabbitMQURL); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, events are only logged")
	} else {
		closers = append(closers, conn.Close)
		pub, err := rabbitmq.NewPublisher(conn.Channel(), cfg.RabbitMQExchange)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("rabbitmq publisher: %w", err)
		}
		container.SetPublisher(pub)
	}

	if cfg.SearchIndexEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass, cfg.ESTimeout)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		} else {
			container.SetES(es)
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable, avatar upload disabled")
		} else {
			closers = append(closers, func() { _ = gcsClient.Close() })
			container.SetGCS(gcsClient)
		}
	}

	if cfg.MailConfigured() && cfg.MailSendEnabled {
		container.SetMailgun(mailerFromConfig(cfg))
	}
	return cleanup, nil
}

// exitCode maps error classes to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return 2
	case errors.Is(err, apperrors.ErrNotFound):
		return 3
	case errors.Is(err, apperrors.ErrConflict):
		return 4
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrForbidden):
		return 5
	default:
		return 1
	}
}
