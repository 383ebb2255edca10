package entity

import (
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// UserSubscription is a user's plan. ExpiresAt nil means open ended.
type UserSubscription struct {
	ID            uuid.UUID
	UserID        vo.UserID
	Tier          vo.SubscriptionTier
	Status        vo.SubscriptionStatus
	StartsAt      time.Time
	ExpiresAt     *time.Time
	AutoRenew     bool
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSubscription starts an active subscription lasting days; zero days means no expiry.
func NewSubscription(userID vo.UserID, tier vo.SubscriptionTier, days int, autoRenew bool) (*UserSubscription, error) {
	if days < 0 {
		return nil, vo.NewInvalidValueError(vo.CategorySubscription, "negative duration")
	}
	t := clock().UTC()
	var expires *time.Time
	if days > 0 {
		e := t.AddDate(0, 0, days)
		expires = &e
	}
	return RestoreSubscription(uuid.New(), userID, tier, vo.SubscriptionActive, t, expires, autoRenew, "")
}

// RestoreSubscription builds a subscription from stored values.
func RestoreSubscription(
	id uuid.UUID,
	userID vo.UserID,
	tier vo.SubscriptionTier,
	status vo.SubscriptionStatus,
	startsAt time.Time,
	expiresAt *time.Time,
	autoRenew bool,
	paymentMethod string,
) (*UserSubscription, error) {
	if expiresAt != nil && !expiresAt.After(startsAt) {
		return nil, vo.NewInvalidValueError(vo.CategorySubscription, "expiry must be after start")
	}
	t := clock().UTC()
	return &UserSubscription{
		ID:            id,
		UserID:        userID,
		Tier:          tier,
		Status:        status,
		StartsAt:      startsAt,
		ExpiresAt:     expiresAt,
		AutoRenew:     autoRenew,
		PaymentMethod: paymentMethod,
		CreatedAt:     t,
		UpdatedAt:     t,
	}, nil
}

// IsActive reports whether the subscription is active and unexpired at t.
func (s *UserSubscription) IsActive(t time.Time) bool {
	if s.Status != vo.SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(t)
}

func (s *UserSubscription) Cancel() {
	s.Status = vo.SubscriptionCanceled
	s.AutoRenew = false
	s.UpdatedAt = clock().UTC()
}

func (s *UserSubscription) Deactivate() {
	s.Status = vo.SubscriptionInactive
	s.UpdatedAt = clock().UTC()
}

// Renew moves the expiry to newExpiry and reactivates the subscription.
func (s *UserSubscription) Renew(newExpiry time.Time) error {
	if !newExpiry.After(clock()) {
		return vo.NewExpiredError(vo.CategorySubscription)
	}
	newExpiry = newExpiry.UTC()
	s.ExpiresAt = &newExpiry
	s.Status = vo.SubscriptionActive
	s.UpdatedAt = clock().UTC()
	return nil
}

// RenewFor extends an auto-renewing subscription by days from its current
// expiry, or from now when already expired.
func (s *UserSubscription) RenewFor(days int) error {
	if !s.AutoRenew {
		return vo.NewInvalidValueError(vo.CategorySubscription, "auto renew disabled")
	}
	if days <= 0 {
		return vo.NewInvalidValueError(vo.CategorySubscription, "non-positive duration")
	}
	from := clock()
	if s.ExpiresAt != nil && s.ExpiresAt.After(from) {
		from = *s.ExpiresAt
	}
	return s.Renew(from.AddDate(0, 0, days))
}

// ChangeTier is only allowed on an active subscription.
func (s *UserSubscription) ChangeTier(tier vo.SubscriptionTier) error {
	if !s.IsActive(clock()) {
		return vo.NewInvalidValueError(vo.CategorySubscription, "subscription not active")
	}
	if s.Tier == tier {
		return vo.NewUnchangedError(vo.CategorySubscriptionTier, string(tier))
	}
	s.Tier = tier
	s.UpdatedAt = clock().UTC()
	return nil
}
