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

type SubscriptionRepository struct {
	db DB
}

func NewSubscriptionRepository(db DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID vo.UserID) (*entity.UserSubscription, error) {
	var (
		row                   entity.UserSubscription
		tier, status, payment string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, tier, status, starts_at, expires_at, auto_renew, payment_method, created_at, updated_at
		FROM user_subscriptions
		WHERE user_id = $1
	`, userID.UUID()).Scan(&row.ID, &tier, &status, &row.StartsAt, &row.ExpiresAt, &row.AutoRenew, &payment,
		&row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	t, err := vo.ParseSubscriptionTier(tier)
	if err != nil {
		return nil, fmt.Errorf("stored subscription %s: %w", row.ID, err)
	}
	st, err := vo.ParseSubscriptionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored subscription %s: %w", row.ID, err)
	}
	sub, err := entity.RestoreSubscription(row.ID, userID, t, st, row.StartsAt, row.ExpiresAt, row.AutoRenew, payment)
	if err != nil {
		return nil, fmt.Errorf("stored subscription %s: %w", row.ID, err)
	}
	sub.CreatedAt, sub.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return sub, nil
}

func (r *SubscriptionRepository) Save(ctx context.Context, s *entity.UserSubscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_subscriptions (id, user_id, tier, status, starts_at, expires_at, auto_renew,
			payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE
		SET tier = EXCLUDED.tier, status = EXCLUDED.status, starts_at = EXCLUDED.starts_at,
			expires_at = EXCLUDED.expires_at, auto_renew = EXCLUDED.auto_renew,
			payment_method = EXCLUDED.payment_method, updated_at = EXCLUDED.updated_at
	`, s.ID, s.UserID.UUID(), string(s.Tier), string(s.Status), s.StartsAt, s.ExpiresAt, s.AutoRenew,
		s.PaymentMethod, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return mapWriteError("save subscription", err)
	}
	return nil
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
