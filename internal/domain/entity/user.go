package entity

import (
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// User is the aggregate root of the user context. State changes go through its
// methods, each of which records a domain event drained with TakeEvents.
//
// A User is not safe for concurrent use.
type User struct {
	id            vo.UserID
	email         vo.Email
	emailVerified bool
	phone         *vo.Phone
	phoneVerified bool
	username      *vo.Username
	externalID    *vo.ExternalID
	status        vo.UserStatus
	createdAt     vo.OccurredAt
	updatedAt     vo.OccurredAt
	deletedAt     *vo.OccurredAt
	version       int

	events []event.Event
}

// Register creates a pending user with an unverified email.
func Register(email vo.Email) *User {
	at := now()
	u := &User{
		id:        vo.NewUserID(),
		email:     email,
		status:    vo.StatusPending,
		createdAt: at,
		updatedAt: at,
	}
	u.record(event.Registered{Meta: u.meta(at), Email: email})
	return u
}

func (u *User) ID() vo.UserID             { return u.id }
func (u *User) Email() vo.Email           { return u.email }
func (u *User) EmailVerified() bool       { return u.emailVerified }
func (u *User) PhoneVerified() bool       { return u.phoneVerified }
func (u *User) Status() vo.UserStatus     { return u.status }
func (u *User) CreatedAt() vo.OccurredAt  { return u.createdAt }
func (u *User) UpdatedAt() vo.OccurredAt  { return u.updatedAt }
func (u *User) DeletedAt() *vo.OccurredAt { return copyPtr(u.deletedAt) }
func (u *User) Phone() *vo.Phone          { return copyPtr(u.phone) }
func (u *User) Username() *vo.Username    { return copyPtr(u.username) }
func (u *User) ExternalID() *vo.ExternalID {
	return copyPtr(u.externalID)
}

// Version is the persistence concurrency token.
func (u *User) Version() int { return u.version }

// SetVersion is called by repositories after a successful write.
func (u *User) SetVersion(v int) { u.version = v }

func (u *User) IsActive() bool  { return u.status.IsActive() }
func (u *User) IsDeleted() bool { return u.status.IsDeleted() }

// UpdateEmail replaces the address and sends the user back to pending until the
// new address is verified.
func (u *User) UpdateEmail(email vo.Email) error {
	if err := u.ensureNotDeleted(vo.CategoryEmail); err != nil {
		return err
	}
	if u.email.Equals(email) {
		return vo.NewUnchangedError(vo.CategoryEmail, email.String())
	}
	old := u.email
	u.email = email
	u.emailVerified = false
	u.status = vo.StatusPending
	at := u.touch()
	u.record(event.EmailUpdated{Meta: u.meta(at), Old: old, New: email})
	return nil
}

func (u *User) VerifyEmail() error {
	if u.emailVerified {
		return vo.NewAlreadyVerifiedError(vo.CategoryEmail)
	}
	if u.status.IsSuspended() || u.status.IsDeleted() {
		return vo.NewInvalidStatusError(vo.CategoryEmail, u.status)
	}
	u.emailVerified = true
	at := u.touch()
	u.record(event.EmailVerified{Meta: u.meta(at), Email: u.email})
	return nil
}

func (u *User) AssignPhone(phone vo.Phone) error {
	if err := u.ensureNotDeleted(vo.CategoryPhone); err != nil {
		return err
	}
	u.phone = &phone
	u.phoneVerified = false
	at := u.touch()
	u.record(event.PhoneAssigned{Meta: u.meta(at), Phone: phone})
	return nil
}

func (u *User) VerifyPhone() error {
	if err := u.ensureNotDeleted(vo.CategoryPhone); err != nil {
		return err
	}
	if u.phone == nil {
		return vo.NewMissingError(vo.CategoryPhone)
	}
	if u.phoneVerified {
		return vo.NewAlreadyVerifiedError(vo.CategoryPhone)
	}
	u.phoneVerified = true
	at := u.touch()
	u.record(event.PhoneVerified{Meta: u.meta(at), Phone: *u.phone})
	return nil
}

func (u *User) AssignUsername(username vo.Username) error {
	if err := u.ensureNotDeleted(vo.CategoryUsername); err != nil {
		return err
	}
	u.username = &username
	at := u.touch()
	u.record(event.UsernameAssigned{Meta: u.meta(at), Username: username})
	return nil
}

func (u *User) LinkExternalID(id vo.ExternalID) error {
	if err := u.ensureNotDeleted(vo.CategoryExternalID); err != nil {
		return err
	}
	u.externalID = &id
	at := u.touch()
	u.record(event.ExternalIDLinked{Meta: u.meta(at), ExternalID: id})
	return nil
}

func (u *User) Activate() error {
	from := u.status
	if err := u.transition(vo.StatusActive); err != nil {
		return err
	}
	u.record(event.Activated{Meta: u.meta(u.updatedAt), From: from})
	return nil
}

func (u *User) Suspend() error {
	if err := u.transition(vo.StatusSuspended); err != nil {
		return err
	}
	u.record(event.Suspended{Meta: u.meta(u.updatedAt)})
	return nil
}

// Delete soft-deletes the user. Deleted is terminal.
func (u *User) Delete() error {
	if err := u.transition(vo.StatusDeleted); err != nil {
		return err
	}
	at := u.updatedAt
	u.deletedAt = &at
	u.record(event.Deleted{Meta: u.meta(at)})
	return nil
}

// TakeEvents returns the pending events and empties the buffer.
func (u *User) TakeEvents() []event.Event {
	out := u.events
	u.events = nil
	if out == nil {
		return []event.Event{}
	}
	return out
}

// PendingEvents reports how many events await TakeEvents.
func (u *User) PendingEvents() int { return len(u.events) }

// RecordLogin records a login for a session opened by the auth service. The
// user itself is unchanged, so updatedAt is left alone.
func (u *User) RecordLogin(s *UserSession) error {
	if !u.status.IsActive() {
		return vo.NewInvalidStatusError(vo.CategorySession, u.status)
	}
	if !s.UserID.Equals(u.id) {
		return vo.NewInvalidValueError(vo.CategorySession, "session belongs to another user")
	}
	u.record(event.LoggedIn{Meta: u.meta(now()), SessionID: s.ID, IP: s.IPAddress, UserAgent: s.UserAgent})
	return nil
}

// RenewSubscription renews sub by days and records the renewal. Only sub
// changes; the user's updatedAt is left alone.
func (u *User) RenewSubscription(sub *UserSubscription, days int) error {
	if err := u.ensureNotDeleted(vo.CategorySubscription); err != nil {
		return err
	}
	if !sub.UserID.Equals(u.id) {
		return vo.NewInvalidValueError(vo.CategorySubscription, "subscription belongs to another user")
	}
	if err := sub.RenewFor(days); err != nil {
		return err
	}
	u.record(event.SubscriptionRenewed{
		Meta:           u.meta(now()),
		SubscriptionID: sub.ID,
		Tier:           sub.Tier,
		ExpiresAt:      vo.OccurredAtFrom(*sub.ExpiresAt),
	})
	return nil
}

func (u *User) transition(to vo.UserStatus) error {
	if !u.status.CanTransitionTo(to) {
		return vo.NewTransitionError(u.status, to)
	}
	u.status = to
	u.touch()
	return nil
}

func (u *User) ensureNotDeleted(c vo.Category) error {
	if u.status.IsDeleted() {
		return vo.NewInvalidStatusError(c, u.status)
	}
	return nil
}

func (u *User) touch() vo.OccurredAt {
	u.updatedAt = now()
	return u.updatedAt
}

func (u *User) meta(at vo.OccurredAt) event.Meta { return event.NewMeta(u.id, at) }

func (u *User) record(e event.Event) { u.events = append(u.events, e) }

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
