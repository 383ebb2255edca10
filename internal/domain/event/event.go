package event

import (
	"context"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// Event names double as routing keys on the message bus.
const (
	NameRegistered          = "user.registered"
	NameEmailUpdated        = "user.email_updated"
	NameEmailVerified       = "user.email_verified"
	NamePhoneAssigned       = "user.phone_assigned"
	NamePhoneVerified       = "user.phone_verified"
	NameActivated           = "user.activated"
	NameSuspended           = "user.suspended"
	NameDeleted             = "user.deleted"
	NameUsernameAssigned    = "user.username_assigned"
	NameExternalIDLinked    = "user.external_id_linked"
	NameLoggedIn            = "user.logged_in"
	NameSubscriptionRenewed = "user.subscription_renewed"
)

// Event is a fact about a user. The set is closed: only types in this package
// implement it, so consumers dispatch with a type switch.
type Event interface {
	EventName() string
	AggregateID() valueobject.UserID
	OccurredAt() valueobject.OccurredAt

	sealed()
}

// Publisher delivers drained events. Errors are returned to the caller as is.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Meta is embedded by every event.
type Meta struct {
	UserID valueobject.UserID
	At     valueobject.OccurredAt
}

func NewMeta(id valueobject.UserID, at valueobject.OccurredAt) Meta {
	return Meta{UserID: id, At: at}
}

func (m Meta) AggregateID() valueobject.UserID    { return m.UserID }
func (m Meta) OccurredAt() valueobject.OccurredAt { return m.At }
func (Meta) sealed()                              {}
