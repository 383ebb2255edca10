package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

// SessionStore keeps sessions until they expire.
type SessionStore struct {
	rdb goredis.Cmdable
	now func() time.Time
}

func NewSessionStore(rdb goredis.Cmdable) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func (s *SessionStore) Put(ctx context.Context, sess *entity.UserSession) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 || !sess.IsActive {
		return s.Delete(ctx, sess.ID.String())
	}
	return helpers.RedisSetJSON(ctx, s.rdb, helpers.KeySession(sess.ID.String()), sess, ttl)
}

// Get returns nil, nil for unknown or expired sessions.
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.UserSession, error) {
	var sess entity.UserSession
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, helpers.KeySession(id), &sess)
	if err != nil || !ok {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return helpers.RedisDel(ctx, s.rdb, helpers.KeySession(id))
}

var _ repository.SessionStore = (*SessionStore)(nil)
