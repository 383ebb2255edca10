package container

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/application"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/gcs"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/postgres"
	rediscache "github.com/oksasatya/go-ddd-user-context/internal/infrastructure/redis"
)

// Services groups the application services.
type Services struct {
	Users         *application.UserService
	Auth          *application.AuthService
	Verification  *application.VerificationService
	Profiles      *application.ProfileService
	Subscriptions *application.SubscriptionService
	// Index is nil unless Elasticsearch is set and indexing is enabled.
	Index *elasticsearch.UserIndex
}

type stores struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	passwords repository.PasswordRepository
	profiles  repository.ProfileRepository
	activity  repository.ActivityLogRepository
	subs      repository.SubscriptionRepository
	sessions  repository.SessionStore
	codes     repository.VerificationCodeStore
}

// BuildServices wires the services over the registered components. Without a
// Postgres pool the repositories are in-memory; without Redis so are sessions,
// verification codes and the user cache.
func BuildServices() *Services {
	c := GetConfig()
	log := GetLogger()
	st := buildStores()
	pub := GetPublisher()

	users := application.NewUserService(st.users, st.roles, st.passwords, st.profiles, pub, log)

	auth := application.NewAuthService(st.users, st.passwords, st.sessions, pub, GetJWT(), c.SessionTTL, log)
	auth.Activity = st.activity
	auth.MaxFailedAttempts = c.MaxLoginFails
	auth.LockPeriod = c.LoginLockPeriod

	verification := application.NewVerificationService(st.users, st.codes, pub, c.VerificationCodeTTL, log)
	verification.MaxAttempts = c.MaxCodeAttempts

	var avatars application.AvatarUploader
	if gcsClient != nil && c.GCSBucket != "" {
		avatars = gcs.NewAvatarStore(gcsClient, c.GCSBucket)
	}
	profiles := application.NewProfileService(st.users, st.profiles, avatars, log)

	subs := application.NewSubscriptionService(st.users, st.subs, pub, log)

	s := &Services{Users: users, Auth: auth, Verification: verification, Profiles: profiles, Subscriptions: subs}
	if esClient != nil && c.SearchIndexEnabled {
		s.Index = elasticsearch.NewUserIndex(esClient, c.ESUsersIndex, c.ESTimeout, log)
		users.Searcher = s.Index
	}
	return s
}

func buildStores() stores {
	c := GetConfig()
	log := GetLogger()

	var st stores
	if pgPool != nil {
		st.users = postgres.NewUserRepository(pgPool)
		st.roles = postgres.NewRoleRepository(pgPool)
		st.passwords = postgres.NewPasswordRepository(pgPool)
		st.profiles = postgres.NewProfileRepository(pgPool)
		st.activity = postgres.NewActivityLogRepository(pgPool)
		st.subs = postgres.NewSubscriptionRepository(pgPool)
	} else {
		log.Warn("no database configured, using in-memory repositories")
		st.users = memory.NewUserRepository()
		st.roles = memory.NewRoleRepository()
		st.passwords = memory.NewPasswordRepository()
		st.profiles = memory.NewProfileRepository()
		st.activity = memory.NewActivityLogRepository()
		st.subs = memory.NewSubscriptionRepository()
	}

	if redisClient != nil {
		st.users = rediscache.NewCachedUserRepository(st.users, redisClient, c.UserCacheTTL, log)
		st.sessions = rediscache.NewSessionStore(redisClient)
		st.codes = rediscache.NewVerificationStore(redisClient)
	} else {
		st.sessions = memory.NewSessionStore()
		st.codes = memory.NewVerificationStore()
	}
	return st
}

type logPublisher struct {
	logger logrus.FieldLogger
}

func (p logPublisher) Publish(_ context.Context, e event.Event) error {
	p.logger.WithField("event", e.EventName()).WithField("user_id", e.AggregateID().String()).Info("event (no broker)")
	return nil
}
