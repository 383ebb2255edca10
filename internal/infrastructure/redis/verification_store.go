package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

type VerificationStore struct {
	rdb goredis.Cmdable
}

func NewVerificationStore(rdb goredis.Cmdable) *VerificationStore {
	return &VerificationStore{rdb: rdb}
}

// Save replaces any pending code of the user and resets its attempt counter.
func (s *VerificationStore) Save(ctx context.Context, userID vo.UserID, c repository.VerificationCode, ttl time.Duration) error {
	if err := helpers.RedisSetJSON(ctx, s.rdb, helpers.KeyEmailVerification(userID.String()), c, ttl); err != nil {
		return err
	}
	return helpers.RedisDel(ctx, s.rdb, helpers.KeyEmailVerificationAttempts(userID.String()))
}

// Get returns nil, nil when no code is pending.
func (s *VerificationStore) Get(ctx context.Context, userID vo.UserID) (*repository.VerificationCode, error) {
	var c repository.VerificationCode
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, helpers.KeyEmailVerification(userID.String()), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// CountFailure opens the counter window on the first wrong guess.
func (s *VerificationStore) CountFailure(ctx context.Context, userID vo.UserID, ttl time.Duration) (int, error) {
	n, err := helpers.RedisIncrExpire(ctx, s.rdb, helpers.KeyEmailVerificationAttempts(userID.String()), ttl)
	return int(n), err
}

func (s *VerificationStore) Delete(ctx context.Context, userID vo.UserID) error {
	uid := userID.String()
	return helpers.RedisDel(ctx, s.rdb, helpers.KeyEmailVerification(uid), helpers.KeyEmailVerificationAttempts(uid))
}

var _ repository.VerificationCodeStore = (*VerificationStore)(nil)
