package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

// CachedUserRepository is a read-through cache in front of another
// UserRepository. Only GetByID is cached; every write evicts the entry, failed
// ones included, so a stale copy cannot outlive a lost version race. Redis
// failures are logged and fall through to the wrapped repository.
type CachedUserRepository struct {
	next   repository.UserRepository
	rdb    goredis.Cmdable
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewCachedUserRepository(next repository.UserRepository, rdb goredis.Cmdable, ttl time.Duration, logger logrus.FieldLogger) *CachedUserRepository {
	return &CachedUserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id vo.UserID) (*entity.User, error) {
	key := helpers.KeyUserCache(id.String())
	var snap entity.Snapshot
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, key, &snap)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache read failed")
	}
	if ok {
		if u, err := entity.Rehydrate(snap); err == nil {
			return u, nil
		}
		// unreadable entry, drop it and go to the source
		_ = helpers.RedisDel(ctx, r.rdb, key)
	}

	u, err := r.next.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, u.Snapshot(), r.ttl); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache write failed")
	}
	return u, nil
}

func (r *CachedUserRepository) GetByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *CachedUserRepository) GetByUsername(ctx context.Context, username vo.Username) (*entity.User, error) {
	return r.next.GetByUsername(ctx, username)
}

func (r *CachedUserRepository) ExistsByEmail(ctx context.Context, email vo.Email) (bool, error) {
	return r.next.ExistsByEmail(ctx, email)
}

func (r *CachedUserRepository) ExistsByUsername(ctx context.Context, username vo.Username) (bool, error) {
	return r.next.ExistsByUsername(ctx, username)
}

func (r *CachedUserRepository) Save(ctx context.Context, u *entity.User) error {
	err := r.next.Save(ctx, u)
	r.evict(ctx, u.ID())
	return err
}

func (r *CachedUserRepository) SoftDelete(ctx context.Context, u *entity.User) error {
	err := r.next.SoftDelete(ctx, u)
	r.evict(ctx, u.ID())
	return err
}

func (r *CachedUserRepository) evict(ctx context.Context, id vo.UserID) {
	key := helpers.KeyUserCache(id.String())
	if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache evict failed")
	}
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)
