package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// UserPassword holds a user's credential hash and lockout state. The hash is
// produced outside the domain (bcrypt in pkg/helpers).
type UserPassword struct {
	ID                uuid.UUID
	UserID            vo.UserID
	Hash              string
	ResetToken        string
	ResetTokenExpires *time.Time
	FailedAttempts    int
	LockedUntil       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewUserPassword(userID vo.UserID, hash string) (*UserPassword, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, &vo.Error{Category: vo.CategoryPassword, Kind: vo.KindEmpty}
	}
	t := clock().UTC()
	return &UserPassword{ID: uuid.New(), UserID: userID, Hash: hash, CreatedAt: t, UpdatedAt: t}, nil
}

// RegisterFailedAttempt returns the updated counter.
func (p *UserPassword) RegisterFailedAttempt() int {
	p.FailedAttempts++
	p.UpdatedAt = clock().UTC()
	return p.FailedAttempts
}

func (p *UserPassword) ResetFailedAttempts() {
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.UpdatedAt = clock().UTC()
}

func (p *UserPassword) LockUntil(until time.Time) {
	until = until.UTC()
	p.LockedUntil = &until
	p.UpdatedAt = clock().UTC()
}

func (p *UserPassword) IsLocked(t time.Time) bool {
	return p.LockedUntil != nil && p.LockedUntil.After(t)
}

func (p *UserPassword) SetResetToken(token string, expiresAt time.Time) error {
	if strings.TrimSpace(token) == "" {
		return &vo.Error{Category: vo.CategoryPassword, Kind: vo.KindEmpty}
	}
	if !expiresAt.After(clock()) {
		return vo.NewExpiredError(vo.CategoryPassword)
	}
	expiresAt = expiresAt.UTC()
	p.ResetToken = token
	p.ResetTokenExpires = &expiresAt
	p.UpdatedAt = clock().UTC()
	return nil
}

func (p *UserPassword) ClearResetToken() {
	p.ResetToken = ""
	p.ResetTokenExpires = nil
	p.UpdatedAt = clock().UTC()
}

// UpdatePassword replaces the hash and clears lockout and reset state.
func (p *UserPassword) UpdatePassword(hash string) error {
	if strings.TrimSpace(hash) == "" {
		return &vo.Error{Category: vo.CategoryPassword, Kind: vo.KindEmpty}
	}
	p.Hash = hash
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.ResetToken = ""
	p.ResetTokenExpires = nil
	p.UpdatedAt = clock().UTC()
	return nil
}
