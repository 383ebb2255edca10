package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

const maxSaveAttempts = 3

// userStore loads users and persists them together with their pending events.
type userStore struct {
	users     repository.UserRepository
	publisher event.Publisher
	logger    logrus.FieldLogger
}

func (s userStore) load(ctx context.Context, rawID string) (*entity.User, error) {
	id, err := vo.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// mutate applies fn to the stored user and saves it. A lost version race
// reloads and reapplies fn.
func (s userStore) mutate(ctx context.Context, rawID string, fn func(*entity.User) error) (*entity.User, error) {
	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		u, err := s.load(ctx, rawID)
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		err = s.save(ctx, u)
		if err == nil {
			return u, nil
		}
		if !repository.IsConcurrentUpdate(err) {
			return nil, err
		}
		lastErr = err
		s.logger.WithField("user_id", rawID).WithField("attempt", attempt).Warn("concurrent user update, retrying")
	}
	return nil, lastErr
}

// save persists u, soft-deleting when it is deleted, then publishes its events.
func (s userStore) save(ctx context.Context, u *entity.User) error {
	var err error
	if u.IsDeleted() {
		err = s.users.SoftDelete(ctx, u)
	} else {
		err = s.users.Save(ctx, u)
	}
	if err != nil {
		return err
	}
	return s.publish(ctx, u)
}

// publish drains u's events and hands them to the publisher in order.
func (s userStore) publish(ctx context.Context, u *entity.User) error {
	for _, e := range u.TakeEvents() {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.WithError(err).WithField("user_id", u.ID().String()).WithField("event", e.EventName()).
				Error("publish event failed")
			return fmt.Errorf("publish %s: %w", e.EventName(), err)
		}
	}
	return nil
}
