package entity

import (
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// UserSession is an authenticated session. Access tokens carry
// AccessTokenVersion so bumping it revokes them.
type UserSession struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             vo.UserID  `json:"user_id"`
	RefreshToken       string     `json:"refresh_token,omitempty"`
	AccessTokenVersion int        `json:"access_token_version"`
	ExpiresAt          time.Time  `json:"expires_at"`
	IPAddress          string     `json:"ip_address,omitempty"`
	UserAgent          string     `json:"user_agent,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	LastActivityAt     *time.Time `json:"last_activity_at,omitempty"`
}

func NewUserSession(userID vo.UserID, refreshToken string, expiresAt time.Time, ip, userAgent string) (*UserSession, error) {
	t := clock()
	if !expiresAt.After(t) {
		return nil, vo.NewExpiredError(vo.CategorySession)
	}
	return &UserSession{
		ID:                 uuid.New(),
		UserID:             userID,
		RefreshToken:       refreshToken,
		AccessTokenVersion: 1,
		ExpiresAt:          expiresAt.UTC(),
		IPAddress:          ip,
		UserAgent:          userAgent,
		IsActive:           true,
		CreatedAt:          t.UTC(),
	}, nil
}

func (s *UserSession) Terminate() { s.IsActive = false }

func (s *UserSession) IsValid(t time.Time) bool { return s.IsActive && s.ExpiresAt.After(t) }

func (s *UserSession) Touch() {
	t := clock().UTC()
	s.LastActivityAt = &t
}

func (s *UserSession) InvalidateTokens() { s.AccessTokenVersion++ }
