package event

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

var ErrUnknownEvent = errors.New("unknown event")

// Envelope is the transport form of an Event.
type Envelope struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	UserID     string            `json:"user_id"`
	OccurredAt string            `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// NewEnvelope flattens e into its transport form with a fresh message id.
func NewEnvelope(e Event) Envelope {
	env := Envelope{
		ID:         uuid.NewString(),
		Name:       e.EventName(),
		UserID:     e.AggregateID().String(),
		OccurredAt: e.OccurredAt().String(),
		Payload:    map[string]string{},
	}
	p := env.Payload
	switch ev := e.(type) {
	case Registered:
		p["email"] = ev.Email.String()
	case EmailUpdated:
		p["old_email"] = ev.Old.String()
		p["new_email"] = ev.New.String()
	case EmailVerified:
		p["email"] = ev.Email.String()
	case PhoneAssigned:
		p["country_code"] = ev.Phone.CountryCode()
		p["number"] = ev.Phone.Number()
	case PhoneVerified:
		p["country_code"] = ev.Phone.CountryCode()
		p["number"] = ev.Phone.Number()
	case Activated:
		p["from"] = ev.From.String()
	case UsernameAssigned:
		p["username"] = ev.Username.String()
	case ExternalIDLinked:
		p["external_id"] = ev.ExternalID.String()
	case LoggedIn:
		p["session_id"] = ev.SessionID.String()
		p["ip"] = ev.IP
		p["user_agent"] = ev.UserAgent
	case SubscriptionRenewed:
		p["subscription_id"] = ev.SubscriptionID.String()
		p["tier"] = string(ev.Tier)
		p["expires_at"] = ev.ExpiresAt.String()
	}
	return env
}

// Decode rebuilds the Event, validating every field through its value object.
func (env Envelope) Decode() (Event, error) {
	id, err := valueobject.ParseUserID(env.UserID)
	if err != nil {
		return nil, err
	}
	at, err := valueobject.ParseOccurredAt(env.OccurredAt)
	if err != nil {
		return nil, err
	}
	ev, err := decodePayload(NewMeta(id, at), env.Name, env.Payload)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func decodePayload(meta Meta, name string, p map[string]string) (Event, error) {
	switch name {
	case NameRegistered:
		e, err := valueobject.NewEmail(p["email"])
		return Registered{Meta: meta, Email: e}, err
	case NameEmailUpdated:
		oldEmail, err := valueobject.NewEmail(p["old_email"])
		if err != nil {
			return nil, err
		}
		newEmail, err := valueobject.NewEmail(p["new_email"])
		return EmailUpdated{Meta: meta, Old: oldEmail, New: newEmail}, err
	case NameEmailVerified:
		e, err := valueobject.NewEmail(p["email"])
		return EmailVerified{Meta: meta, Email: e}, err
	case NamePhoneAssigned:
		ph, err := valueobject.NewPhone(p["country_code"], p["number"])
		return PhoneAssigned{Meta: meta, Phone: ph}, err
	case NamePhoneVerified:
		ph, err := valueobject.NewPhone(p["country_code"], p["number"])
		return PhoneVerified{Meta: meta, Phone: ph}, err
	case NameActivated:
		from, err := valueobject.ParseUserStatus(p["from"])
		return Activated{Meta: meta, From: from}, err
	case NameSuspended:
		return Suspended{Meta: meta}, nil
	case NameDeleted:
		return Deleted{Meta: meta}, nil
	case NameUsernameAssigned:
		u, err := valueobject.NewUsername(p["username"])
		return UsernameAssigned{Meta: meta, Username: u}, err
	case NameExternalIDLinked:
		x, err := valueobject.NewExternalID(p["external_id"])
		return ExternalIDLinked{Meta: meta, ExternalID: x}, err
	case NameLoggedIn:
		sid, err := uuid.Parse(p["session_id"])
		if err != nil {
			return nil, fmt.Errorf("decode %s session_id: %w", name, err)
		}
		return LoggedIn{Meta: meta, SessionID: sid, IP: p["ip"], UserAgent: p["user_agent"]}, nil
	case NameSubscriptionRenewed:
		sid, err := uuid.Parse(p["subscription_id"])
		if err != nil {
			return nil, fmt.Errorf("decode %s subscription_id: %w", name, err)
		}
		tier, err := valueobject.ParseSubscriptionTier(p["tier"])
		if err != nil {
			return nil, err
		}
		exp, err := valueobject.ParseOccurredAt(p["expires_at"])
		return SubscriptionRenewed{Meta: meta, SubscriptionID: sid, Tier: tier, ExpiresAt: exp}, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}
