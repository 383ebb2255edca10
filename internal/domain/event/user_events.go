package event

import (
	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

type Registered struct {
	Meta
	Email valueobject.Email
}

type EmailUpdated struct {
	Meta
	Old valueobject.Email
	New valueobject.Email
}

type EmailVerified struct {
	Meta
	Email valueobject.Email
}

type PhoneAssigned struct {
	Meta
	Phone valueobject.Phone
}

type PhoneVerified struct {
	Meta
	Phone valueobject.Phone
}

type Activated struct {
	Meta
	From valueobject.UserStatus
}

type Suspended struct {
	Meta
}

type Deleted struct {
	Meta
}

type UsernameAssigned struct {
	Meta
	Username valueobject.Username
}

type ExternalIDLinked struct {
	Meta
	ExternalID valueobject.ExternalID
}

// LoggedIn is recorded when a password login opens a session.
type LoggedIn struct {
	Meta
	SessionID uuid.UUID
	IP        string
	UserAgent string
}

type SubscriptionRenewed struct {
	Meta
	SubscriptionID uuid.UUID
	Tier           valueobject.SubscriptionTier
	ExpiresAt      valueobject.OccurredAt
}

func (Registered) EventName() string          { return NameRegistered }
func (EmailUpdated) EventName() string        { return NameEmailUpdated }
func (EmailVerified) EventName() string       { return NameEmailVerified }
func (PhoneAssigned) EventName() string       { return NamePhoneAssigned }
func (PhoneVerified) EventName() string       { return NamePhoneVerified }
func (Activated) EventName() string           { return NameActivated }
func (Suspended) EventName() string           { return NameSuspended }
func (Deleted) EventName() string             { return NameDeleted }
func (UsernameAssigned) EventName() string    { return NameUsernameAssigned }
func (ExternalIDLinked) EventName() string    { return NameExternalIDLinked }
func (LoggedIn) EventName() string            { return NameLoggedIn }
func (SubscriptionRenewed) EventName() string { return NameSubscriptionRenewed }
