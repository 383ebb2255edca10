package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

// DefaultMaxCodeAttempts wrong guesses discard the pending code.
const DefaultMaxCodeAttempts = 5

// VerificationService issues and confirms email verification codes.
type VerificationService struct {
	store       userStore
	Codes       repository.VerificationCodeStore
	TTL         time.Duration
	MaxAttempts int
	Logger      logrus.FieldLogger

	generate func() (string, error)
	now      func() time.Time
}

func NewVerificationService(users repository.UserRepository, codes repository.VerificationCodeStore, publisher event.Publisher, ttl time.Duration, logger logrus.FieldLogger) *VerificationService {
	return &VerificationService{
		store:    userStore{users: users, publisher: publisher, logger: logger},
		Codes:       codes,
		TTL:         ttl,
		MaxAttempts: DefaultMaxCodeAttempts,
		Logger:      logger,
		generate:    helpers.GenOTPCode,
		now:         time.Now,
	}
}

// IssueEmailCode creates a fresh code for the user's current address,
// replacing any pending one.
func (s *VerificationService) IssueEmailCode(ctx context.Context, id string) (*entity.User, repository.VerificationCode, error) {
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, repository.VerificationCode{}, err
	}
	if u.EmailVerified() {
		return nil, repository.VerificationCode{}, vo.NewAlreadyVerifiedError(vo.CategoryEmail)
	}
	if u.Status().IsSuspended() || u.IsDeleted() {
		return nil, repository.VerificationCode{}, vo.NewInvalidStatusError(vo.CategoryEmail, u.Status())
	}
	code, err := s.generate()
	if err != nil {
		return nil, repository.VerificationCode{}, err
	}
	c := repository.VerificationCode{
		Code:      code,
		Email:     u.Email().String(),
		ExpiresAt: s.now().Add(s.TTL).UTC(),
	}
	if err := s.Codes.Save(ctx, u.ID(), c, s.TTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Error("store verification code failed")
		return nil, repository.VerificationCode{}, err
	}
	s.Logger.WithField("user_id", id).Info("email verification code issued")
	return u, c, nil
}

// ConfirmEmail verifies the address when code matches the pending one issued
// for that same address. The code is consumed on success and discarded after
// MaxAttempts wrong guesses.
func (s *VerificationService) ConfirmEmail(ctx context.Context, id, code string) (*entity.User, error) {
	u, err := s.store.mutate(ctx, id, func(u *entity.User) error {
		pending, err := s.Codes.Get(ctx, u.ID())
		if err != nil {
			return err
		}
		if pending == nil || pending.Email != u.Email().String() ||
			subtle.ConstantTimeCompare([]byte(pending.Code), []byte(code)) != 1 {
			return ErrInvalidCode
		}
		return u.VerifyEmail()
	})
	if errors.Is(err, ErrInvalidCode) {
		return nil, s.countFailure(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Codes.Delete(ctx, u.ID()); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("delete verification code failed")
	}
	return u, nil
}

func (s *VerificationService) countFailure(ctx context.Context, id string) error {
	log := s.Logger.WithField("user_id", id)
	uid, err := vo.ParseUserID(id)
	if err != nil {
		return err
	}
	n, err := s.Codes.CountFailure(ctx, uid, s.TTL)
	if err != nil {
		log.WithError(err).Warn("count verification failure failed")
		return ErrInvalidCode
	}
	if n < s.MaxAttempts {
		return ErrInvalidCode
	}
	if err := s.Codes.Delete(ctx, uid); err != nil {
		log.WithError(err).Error("discard verification code failed")
	}
	log.WithField("attempts", n).Warn("verification code discarded after wrong guesses")
	return ErrTooManyCodeGuesses
}
