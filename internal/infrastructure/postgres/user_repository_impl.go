package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

const uniqueViolation = "23505"

const userColumns = `id, email, email_verified,
		COALESCE(phone_country_code, ''), COALESCE(phone_number, ''), phone_verified,
		COALESCE(username, ''), COALESCE(external_id, ''),
		status, created_at, updated_at, deleted_at, version`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id vo.UserID) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.UUID())
}

// GetByEmail only matches users that are not deleted.
func (r *UserRepository) GetByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email.String())
}

func (r *UserRepository) GetByUsername(ctx context.Context, username vo.Username) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 AND deleted_at IS NULL`, username.String())
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email vo.Email) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`, email.String())
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username vo.Username) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND deleted_at IS NULL)`, username.String())
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	s := u.Snapshot()
	if s.Version == 0 {
		_, err := r.db.Exec(ctx, `
			INSERT INTO users (id, email, email_verified, phone_country_code, phone_number, phone_verified,
				username, external_id, status, created_at, updated_at, deleted_at, version)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, 1)
		`, u.ID().UUID(), s.Email, s.EmailVerified, s.PhoneCountryCode, s.PhoneNumber, s.PhoneVerified,
			s.Username, s.ExternalID, s.Status, s.CreatedAt, s.UpdatedAt, s.DeletedAt)
		if err != nil {
			return mapWriteError("insert user", err)
		}
		u.SetVersion(1)
		return nil
	}

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $3, email_verified = $4, phone_country_code = NULLIF($5, ''), phone_number = NULLIF($6, ''),
			phone_verified = $7, username = NULLIF($8, ''), external_id = NULLIF($9, ''), status = $10,
			updated_at = $11, deleted_at = $12, version = version + 1
		WHERE id = $1 AND version = $2
	`, u.ID().UUID(), s.Version, s.Email, s.EmailVerified, s.PhoneCountryCode, s.PhoneNumber,
		s.PhoneVerified, s.Username, s.ExternalID, s.Status, s.UpdatedAt, s.DeletedAt)
	if err != nil {
		return mapWriteError("update user", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrConcurrentUpdate
	}
	u.SetVersion(s.Version + 1)
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, u *entity.User) error {
	if !u.IsDeleted() {
		return vo.NewInvalidStatusError(vo.CategoryStatus, u.Status())
	}
	s := u.Snapshot()
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET status = $3, updated_at = $4, deleted_at = $5, version = version + 1
		WHERE id = $1 AND version = $2
	`, u.ID().UUID(), s.Version, s.Status, s.UpdatedAt, s.DeletedAt)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrConcurrentUpdate
	}
	u.SetVersion(s.Version + 1)
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var (
		s         entity.Snapshot
		id        uuid.UUID
		deletedAt *time.Time
	)
	row := r.db.QueryRow(ctx, query, arg)
	if err := row.Scan(&id, &s.Email, &s.EmailVerified, &s.PhoneCountryCode, &s.PhoneNumber, &s.PhoneVerified,
		&s.Username, &s.ExternalID, &s.Status, &s.CreatedAt, &s.UpdatedAt, &deletedAt, &s.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	s.ID = id.String()
	s.DeletedAt = deletedAt
	u, err := entity.Rehydrate(s)
	if err != nil {
		return nil, fmt.Errorf("rehydrate user %s: %w", s.ID, err)
	}
	return u, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.Wrap(apperrors.ErrConflict, op+": "+pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ repository.UserRepository = (*UserRepository)(nil)
