package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// SubscriptionRepository keeps one subscription per user.
type SubscriptionRepository interface {
	// GetByUserID returns nil, nil when the user never subscribed.
	GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserSubscription, error)
	Save(ctx context.Context, s *entity.UserSubscription) error
}
