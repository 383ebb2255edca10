package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/validation"
)

// SubscriptionService manages the plan of a user.
type SubscriptionService struct {
	store         userStore
	Subscriptions repository.SubscriptionRepository
	Logger        logrus.FieldLogger

	now func() time.Time
}

func NewSubscriptionService(users repository.UserRepository, subs repository.SubscriptionRepository, publisher event.Publisher, logger logrus.FieldLogger) *SubscriptionService {
	return &SubscriptionService{
		store:         userStore{users: users, publisher: publisher, logger: logger},
		Subscriptions: subs,
		Logger:        logger,
		now:           time.Now,
	}
}

// Get returns the user's subscription.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*entity.UserSubscription, error) {
	_, sub, err := s.load(ctx, id)
	return sub, err
}

// Subscribe starts a plan. A user holding an active plan must change its tier
// instead; an ended plan is replaced in place.
func (s *SubscriptionService) Subscribe(ctx context.Context, id string, in SubscribeInput) (*entity.UserSubscription, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	tier, err := vo.ParseSubscriptionTier(in.Tier)
	if err != nil {
		return nil, err
	}
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, vo.NewInvalidStatusError(vo.CategorySubscription, u.Status())
	}
	prev, err := s.Subscriptions.GetByUserID(ctx, u.ID())
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.IsActive(s.now()) {
		return nil, ErrSubscriptionActive
	}
	sub, err := entity.NewSubscription(u.ID(), tier, in.Days, in.AutoRenew)
	if err != nil {
		return nil, err
	}
	sub.PaymentMethod = in.PaymentMethod
	if prev != nil {
		sub.ID = prev.ID
		sub.CreatedAt = prev.CreatedAt
	}
	if err := s.Subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", id).WithField("tier", string(tier)).Info("subscription started")
	return sub, nil
}

// Renew extends an auto-renewing plan by days and publishes SubscriptionRenewed.
func (s *SubscriptionService) Renew(ctx context.Context, id string, days int) (*entity.UserSubscription, error) {
	if err := validation.Struct(renewInput{Days: days}); err != nil {
		return nil, err
	}
	u, sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.RenewSubscription(sub, days); err != nil {
		return nil, err
	}
	if err := s.Subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.store.publish(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", id).WithField("expires_at", sub.ExpiresAt).Info("subscription renewed")
	return sub, nil
}

// Cancel ends the plan and turns auto renewal off.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) (*entity.UserSubscription, error) {
	_, sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Cancel()
	if err := s.Subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", id).Info("subscription canceled")
	return sub, nil
}

// ChangeTier moves an active plan to another tier.
func (s *SubscriptionService) ChangeTier(ctx context.Context, id, rawTier string) (*entity.UserSubscription, error) {
	tier, err := vo.ParseSubscriptionTier(rawTier)
	if err != nil {
		return nil, err
	}
	_, sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sub.ChangeTier(tier); err != nil {
		return nil, err
	}
	if err := s.Subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) load(ctx context.Context, id string) (*entity.User, *entity.UserSubscription, error) {
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sub, err := s.Subscriptions.GetByUserID(ctx, u.ID())
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, ErrSubscriptionNotFound
	}
	return u, sub, nil
}
