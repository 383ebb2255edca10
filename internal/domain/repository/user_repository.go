package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

var (
	// ErrConcurrentUpdate means the stored version moved since the user was loaded.
	ErrConcurrentUpdate = apperrors.Wrap(apperrors.ErrConflict, "concurrent update")
	ErrNotFound         = apperrors.Wrap(apperrors.ErrNotFound, "record not found")
)

// IsConcurrentUpdate reports whether err is a lost optimistic-lock race.
func IsConcurrentUpdate(err error) bool { return errors.Is(err, ErrConcurrentUpdate) }

// UserRepository persists User aggregates. Lookups return nil, nil when the
// user does not exist.
type UserRepository interface {
	GetByID(ctx context.Context, id vo.UserID) (*entity.User, error)
	GetByEmail(ctx context.Context, email vo.Email) (*entity.User, error)
	GetByUsername(ctx context.Context, username vo.Username) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email vo.Email) (bool, error)
	ExistsByUsername(ctx context.Context, username vo.Username) (bool, error)
	// Save inserts or updates u, compare-and-swapping on u.Version() and
	// bumping it on success.
	Save(ctx context.Context, u *entity.User) error
	// SoftDelete persists a user whose Delete has already been applied.
	SoftDelete(ctx context.Context, u *entity.User) error
}

// UserSearcher is the read side used for free-text lookups.
type UserSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]entity.Snapshot, error)
}
