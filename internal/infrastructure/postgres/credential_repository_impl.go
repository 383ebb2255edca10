package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

type PasswordRepository struct {
	db DB
}

func NewPasswordRepository(db DB) *PasswordRepository {
	return &PasswordRepository{db: db}
}

func (r *PasswordRepository) GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserPassword, error) {
	p := &entity.UserPassword{UserID: userID}
	var resetToken *string
	row := r.db.QueryRow(ctx, `
		SELECT id, password_hash, reset_token, reset_token_expires, failed_attempts, locked_until, created_at, updated_at
		FROM user_passwords
		WHERE user_id = $1
	`, userID.UUID())
	if err := row.Scan(&p.ID, &p.Hash, &resetToken, &p.ResetTokenExpires, &p.FailedAttempts,
		&p.LockedUntil, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load password: %w", err)
	}
	if resetToken != nil {
		p.ResetToken = *resetToken
	}
	return p, nil
}

func (r *PasswordRepository) Save(ctx context.Context, p *entity.UserPassword) error {
	var resetToken *string
	if p.ResetToken != "" {
		resetToken = &p.ResetToken
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_passwords (id, user_id, password_hash, reset_token, reset_token_expires,
			failed_attempts, locked_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, reset_token = EXCLUDED.reset_token,
			reset_token_expires = EXCLUDED.reset_token_expires, failed_attempts = EXCLUDED.failed_attempts,
			locked_until = EXCLUDED.locked_until, updated_at = EXCLUDED.updated_at
	`, p.ID, p.UserID.UUID(), p.Hash, resetToken, p.ResetTokenExpires, p.FailedAttempts, p.LockedUntil, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteError("save password", err)
	}
	return nil
}

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserProfile, error) {
	p := &entity.UserProfile{UserID: userID}
	var (
		gender           *string
		locale, timezone string
	)
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, display_name, avatar_url, bio, birth_date, gender,
			locale, timezone, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID.UUID())
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DisplayName, &p.AvatarURL, &p.Bio,
		&p.BirthDate, &gender, &locale, &timezone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var err error
	if p.Locale, err = vo.NewLocale(locale); err != nil {
		return nil, fmt.Errorf("stored profile %s: %w", p.ID, err)
	}
	if p.Timezone, err = vo.NewTimezone(timezone); err != nil {
		return nil, fmt.Errorf("stored profile %s: %w", p.ID, err)
	}
	if gender != nil {
		g, err := vo.ParseGender(*gender)
		if err != nil {
			return nil, fmt.Errorf("stored profile %s: %w", p.ID, err)
		}
		p.Gender = &g
	}
	return p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *entity.UserProfile) error {
	var gender *string
	if p.Gender != nil {
		g := string(*p.Gender)
		gender = &g
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_profiles (id, user_id, first_name, last_name, display_name, avatar_url, bio,
			birth_date, gender, locale, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url, bio = EXCLUDED.bio,
			birth_date = EXCLUDED.birth_date, gender = EXCLUDED.gender, locale = EXCLUDED.locale,
			timezone = EXCLUDED.timezone, updated_at = EXCLUDED.updated_at
	`, p.ID, p.UserID.UUID(), p.FirstName, p.LastName, p.DisplayName, p.AvatarURL, p.Bio,
		p.BirthDate, gender, p.Locale.String(), p.Timezone.String(), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteError("save profile", err)
	}
	return nil
}

type ActivityLogRepository struct {
	db DB
}

func NewActivityLogRepository(db DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Append(ctx context.Context, l *entity.UserActivityLog) error {
	details := l.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_activity_logs (id, user_id, action, details, ip_address, user_agent, success, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.UserID.UUID(), l.Action, details, l.IPAddress, l.UserAgent, l.Success, l.Error, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

var (
	_ repository.PasswordRepository    = (*PasswordRepository)(nil)
	_ repository.ProfileRepository     = (*ProfileRepository)(nil)
	_ repository.ActivityLogRepository = (*ActivityLogRepository)(nil)
)
