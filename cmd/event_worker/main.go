package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/container"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/rabbitmq"
	"github.com/oksasatya/go-ddd-user-context/internal/worker"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-context/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	if cfg.SearchIndexEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass, cfg.ESTimeout)
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		container.SetES(es)
	}
	services := container.BuildServices()

	handler := &worker.Handler{
		Cfg:      cfg,
		Users:    services.Users.Users,
		Codes:    services.Verification,
		Location: cfg.EmailLocation(),
		Logger:   logger,
	}
	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; no emails will be sent")
	case !cfg.MailConfigured():
		logger.Warn("Mailgun not configured; no emails will be sent")
	default:
		handler.Mail = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}
	if services.Index != nil {
		handler.Index = services.Index
	}
	if handler.Mail == nil && handler.Index == nil {
		logger.Info("nothing to do; event worker disabled")
		return
	}

	conn, err := rabbitmq.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer conn.Close()

	consumer, err := rabbitmq.NewConsumer(conn.Channel(), rabbitmq.ConsumerConfig{
		Exchange: cfg.RabbitMQExchange,
		Queue:    cfg.RabbitMQQueue,
		Prefetch: cfg.RabbitMQPrefetch,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("consumer setup")
	}

	logger.WithFields(logrus.Fields{
		"queue":    cfg.RabbitMQQueue,
		"mail":     handler.Mail != nil,
		"indexing": handler.Index != nil,
	}).Info("event worker starting")
	if err := consumer.Run(ctx, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("event worker stopped")
		return
	}
	logger.Info("event worker exited properly")
}
