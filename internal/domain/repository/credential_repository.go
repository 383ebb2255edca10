package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

type PasswordRepository interface {
	// GetByUserID returns nil, nil when the user has no password.
	GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserPassword, error)
	Save(ctx context.Context, p *entity.UserPassword) error
}

type ProfileRepository interface {
	// GetByUserID returns nil, nil when no profile exists yet.
	GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserProfile, error)
	Save(ctx context.Context, p *entity.UserProfile) error
}

type ActivityLogRepository interface {
	Append(ctx context.Context, l *entity.UserActivityLog) error
}

// SessionStore keeps live sessions; implemented on redis.
type SessionStore interface {
	Put(ctx context.Context, s *entity.UserSession) error
	Get(ctx context.Context, id string) (*entity.UserSession, error)
	Delete(ctx context.Context, id string) error
}

// VerificationCode is a pending email verification code, bound to the address
// it was issued for.
type VerificationCode struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationCodeStore holds at most one pending code per user together with
// the number of wrong guesses made against it.
type VerificationCodeStore interface {
	// Save replaces the pending code and clears its failure count.
	Save(ctx context.Context, userID vo.UserID, c VerificationCode, ttl time.Duration) error
	// Get returns nil, nil when no code is pending.
	Get(ctx context.Context, userID vo.UserID) (*VerificationCode, error)
	// CountFailure records one wrong guess and returns the total so far.
	CountFailure(ctx context.Context, userID vo.UserID, ttl time.Duration) (int, error)
	Delete(ctx context.Context, userID vo.UserID) error
}
