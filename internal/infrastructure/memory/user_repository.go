// Package memory holds in-process adapters used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

// UserRepository stores snapshots, so callers never share state with it.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.Snapshot
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.Snapshot)}
}

func (r *UserRepository) GetByID(_ context.Context, id vo.UserID) (*entity.User, error) {
	r.mu.RLock()
	s, ok := r.users[id.String()]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return entity.Rehydrate(s)
}

func (r *UserRepository) GetByEmail(_ context.Context, email vo.Email) (*entity.User, error) {
	return r.find(func(s entity.Snapshot) bool { return s.Email == email.String() })
}

func (r *UserRepository) GetByUsername(_ context.Context, username vo.Username) (*entity.User, error) {
	return r.find(func(s entity.Snapshot) bool { return s.Username == username.String() })
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email vo.Email) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username vo.Username) (bool, error) {
	u, err := r.GetByUsername(ctx, username)
	return u != nil, err
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := u.Snapshot()
	if err := r.checkVersion(s); err != nil {
		return err
	}
	for id, other := range r.users {
		if id == s.ID || other.DeletedAt != nil || s.DeletedAt != nil {
			continue
		}
		if other.Email == s.Email {
			return apperrors.Wrap(apperrors.ErrConflict, "email already stored")
		}
		if s.Username != "" && other.Username == s.Username {
			return apperrors.Wrap(apperrors.ErrConflict, "username already stored")
		}
	}
	s.Version++
	r.users[s.ID] = s
	u.SetVersion(s.Version)
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, u *entity.User) error {
	if !u.IsDeleted() {
		return vo.NewInvalidStatusError(vo.CategoryStatus, u.Status())
	}
	return r.Save(ctx, u)
}

// Len reports how many users are stored, deleted ones included.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) checkVersion(s entity.Snapshot) error {
	stored, ok := r.users[s.ID]
	switch {
	case s.Version == 0 && ok:
		return apperrors.Wrap(apperrors.ErrConflict, "user already stored")
	case s.Version != 0 && (!ok || stored.Version != s.Version):
		return repository.ErrConcurrentUpdate
	}
	return nil
}

// find only matches users that are not deleted.
func (r *UserRepository) find(match func(entity.Snapshot) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.users {
		if s.DeletedAt == nil && match(s) {
			return entity.Rehydrate(s)
		}
	}
	return nil, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
