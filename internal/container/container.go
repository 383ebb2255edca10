package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-context/pkg/mailer"
)

// app-level container to share constructed components across the binaries.
// Services are wired from whatever has been set.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	mailgunClient *mailer.Mailgun
	publisher     event.Publisher
	esClient      *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		c := GetConfig()
		logger = helpers.NewLogger(c.AppName, c.Env, c.LogLevel)
	}
	return logger
}
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager == nil {
		c := GetConfig()
		jwtManager = helpers.NewJWTManager(c.JWTSecret, c.JWTIssuer, c.AccessTTL)
	}
	return jwtManager
}

func SetMailgun(m *mailer.Mailgun)   { mailgunClient = m }
func GetMailgun() *mailer.Mailgun    { return mailgunClient }
func SetPublisher(p event.Publisher) { publisher = p }
func SetES(c *elasticsearch.Client)  { esClient = c }
func GetES() *elasticsearch.Client   { return esClient }

// GetPublisher falls back to logging events when no broker is set.
func GetPublisher() event.Publisher {
	if publisher == nil {
		return logPublisher{logger: GetLogger()}
	}
	return publisher
}

// Reset clears every component. Tests use it between cases.
func Reset() {
	cfg, logger, pgPool, redisClient, gcsClient = nil, nil, nil, nil, nil
	jwtManager, mailgunClient, publisher, esClient = nil, nil, nil, nil
}
