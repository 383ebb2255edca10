// Package worker reacts to user events: it mails the user and keeps the
// search projection current.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
	"github.com/oksasatya/go-ddd-user-context/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-user-context/pkg/mailer/templates"
)

// Indexer writes a user into the search projection; deleted snapshots leave it.
type Indexer interface {
	Index(ctx context.Context, s entity.Snapshot) error
}

// CodeIssuer creates email verification codes.
type CodeIssuer interface {
	IssueEmailCode(ctx context.Context, id string) (*entity.User, repository.VerificationCode, error)
}

// Handler turns events into emails and index updates. Mail, Codes and Index are
// optional; a nil one disables that reaction.
type Handler struct {
	Cfg      *config.Config
	Users    repository.UserRepository
	Codes    CodeIssuer
	Mail     mailer.Sender
	Index    Indexer
	Location *time.Location
	Logger   logrus.FieldLogger
}

// Handle is a rabbitmq.Handler. A returned error nacks the message.
func (h *Handler) Handle(ctx context.Context, e event.Event) error {
	log := h.Logger.WithField("event", e.EventName()).WithField("user_id", e.AggregateID().String())

	u, err := h.Users.GetByID(ctx, e.AggregateID())
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		log.Warn("event for unknown user, skipping")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if h.Mail != nil {
		g.Go(func() error { return h.notify(gctx, e, u) })
	}
	if h.Index != nil {
		g.Go(func() error {
			if err := h.Index.Index(gctx, u.Snapshot()); err != nil {
				return fmt.Errorf("index user: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("handle event failed")
		return err
	}
	log.Debug("event handled")
	return nil
}

func (h *Handler) notify(ctx context.Context, e event.Event, u *entity.User) error {
	at := mailtpl.WithTime(e.OccurredAt().Time(), h.Location)

	switch ev := e.(type) {
	case event.Registered:
		return h.SendCode(ctx, u)
	case event.EmailUpdated:
		old := ev.Old.String()
		changed := mailer.EmailJob{
			To:       old,
			Template: mailtpl.EmailChanged,
			Data:     mailtpl.NewEmailChangedData(h.Cfg, old, ev.New.String(), at),
		}
		if err := mailer.Deliver(ctx, h.Mail, changed); err != nil {
			return fmt.Errorf("send %s: %w", mailtpl.EmailChanged, err)
		}
		return h.SendCode(ctx, u)
	case event.Activated:
		return h.sendStatus(ctx, u, vo.StatusActive, at)
	case event.Suspended:
		return h.sendStatus(ctx, u, vo.StatusSuspended, at)
	case event.Deleted:
		return h.sendStatus(ctx, u, vo.StatusDeleted, at)
	}
	return nil
}

// SendCode mails a fresh code for the user's current address. Users that can
// no longer verify, being verified, suspended or deleted, get nothing.
func (h *Handler) SendCode(ctx context.Context, u *entity.User) error {
	if h.Codes == nil || u.EmailVerified() {
		return nil
	}
	_, code, err := h.Codes.IssueEmailCode(ctx, u.ID().String())
	if errors.Is(err, apperrors.ErrInvalidInput) {
		h.Logger.WithError(err).WithField("user_id", u.ID().String()).Info("verification code not issued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	job := mailer.EmailJob{
		To:       code.Email,
		Template: mailtpl.VerifyEmail,
		Data:     mailtpl.NewVerifyEmailData(h.Cfg, code.Email, code.Code, mailtpl.WithExpiresAt(code.ExpiresAt, h.Location)),
	}
	if err := mailer.Deliver(ctx, h.Mail, job); err != nil {
		return fmt.Errorf("send %s: %w", mailtpl.VerifyEmail, err)
	}
	return nil
}

func (h *Handler) sendStatus(ctx context.Context, u *entity.User, status vo.UserStatus, at mailtpl.Option) error {
	to := u.Email().String()
	job := mailer.EmailJob{
		To:       to,
		Template: mailtpl.AccountStatus,
		Data:     mailtpl.NewAccountStatusData(h.Cfg, to, status.String(), at),
	}
	if err := mailer.Deliver(ctx, h.Mail, job); err != nil {
		return fmt.Errorf("send %s: %w", mailtpl.AccountStatus, err)
	}
	return nil
}
