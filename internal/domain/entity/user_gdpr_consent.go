package entity

import (
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// UserGDPRConsent records a consent decision. A refusal is stored too, with
// Given=false.
type UserGDPRConsent struct {
	ID        uuid.UUID
	UserID    vo.UserID
	Type      vo.ConsentType
	Given     bool
	IPAddress string
	UserAgent string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func NewUserGDPRConsent(userID vo.UserID, t vo.ConsentType, given bool, ip, userAgent string, expiresAt *time.Time) (*UserGDPRConsent, error) {
	at := clock()
	if expiresAt != nil && !expiresAt.After(at) {
		return nil, vo.NewExpiredError(vo.CategoryConsent)
	}
	return &UserGDPRConsent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Given:     given,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: at.UTC(),
	}, nil
}

// IsValid reports whether consent is given and unexpired at t.
func (c *UserGDPRConsent) IsValid(t time.Time) bool {
	return c.Given && (c.ExpiresAt == nil || t.Before(*c.ExpiresAt))
}

func (c *UserGDPRConsent) Revoke() { c.Given = false }
