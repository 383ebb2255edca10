package valueobject

import (
	"fmt"

	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

// Category names the field or concept a validation failure belongs to.
type Category string

const (
	CategoryID                 Category = "id"
	CategoryExternalID         Category = "external_id"
	CategoryUsername           Category = "username"
	CategoryEmail              Category = "email"
	CategoryPhone              Category = "phone"
	CategoryStatus             Category = "status"
	CategoryRole               Category = "role"
	CategoryLocale             Category = "locale"
	CategoryTimezone           Category = "timezone"
	CategoryGender             Category = "gender"
	CategoryAuthType           Category = "auth_type"
	CategorySubscriptionTier   Category = "subscription_tier"
	CategorySubscriptionStatus Category = "subscription_status"
	CategoryConsentType        Category = "consent_type"
	CategoryOccurredAt         Category = "occurred_at"

	CategoryPassword       Category = "password"
	CategorySession        Category = "session"
	CategorySubscription   Category = "subscription"
	CategoryProfile        Category = "profile"
	CategoryConsent        Category = "consent"
	CategoryActivity       Category = "activity"
	CategoryMFA            Category = "mfa"
	CategoryRoleAssignment Category = "role_assignment"
)

// Kind names the rule that was broken.
type Kind string

const (
	KindEmpty           Kind = "empty"
	KindMissing         Kind = "missing"
	KindNotSupported    Kind = "not_supported"
	KindFormat          Kind = "format"
	KindTooShort        Kind = "too_short"
	KindTooLong         Kind = "too_long"
	KindUnchanged       Kind = "unchanged"
	KindAlreadyVerified Kind = "already_verified"
	KindInvalidStatus   Kind = "invalid_status"
	KindTransition      Kind = "transition"
	KindExpired         Kind = "expired"
	KindInvalidValue    Kind = "invalid_value"
)

// Error is the single error value produced by the user domain. Only the detail
// fields relevant to Kind are populated.
type Error struct {
	Category Category
	Kind     Kind

	Expected string     // KindFormat
	Min      int        // KindTooShort
	Max      int        // KindTooLong
	Value    string     // KindUnchanged, KindInvalidValue
	Status   UserStatus // KindInvalidStatus
	From     UserStatus // KindTransition
	To       UserStatus // KindTransition
}

// Kind templates usable with errors.Is regardless of category.
var (
	ErrEmpty           = &Error{Kind: KindEmpty}
	ErrMissing         = &Error{Kind: KindMissing}
	ErrNotSupported    = &Error{Kind: KindNotSupported}
	ErrFormat          = &Error{Kind: KindFormat}
	ErrTooShort        = &Error{Kind: KindTooShort}
	ErrTooLong         = &Error{Kind: KindTooLong}
	ErrUnchanged       = &Error{Kind: KindUnchanged}
	ErrAlreadyVerified = &Error{Kind: KindAlreadyVerified}
	ErrInvalidStatus   = &Error{Kind: KindInvalidStatus}
	ErrTransition      = &Error{Kind: KindTransition}
	ErrExpired         = &Error{Kind: KindExpired}
	ErrInvalidValue    = &Error{Kind: KindInvalidValue}
)

func (e *Error) Error() string {
	var detail string
	switch e.Kind {
	case KindFormat:
		detail = fmt.Sprintf("expected %s", e.Expected)
	case KindTooShort:
		detail = fmt.Sprintf("min length %d", e.Min)
	case KindTooLong:
		detail = fmt.Sprintf("max length %d", e.Max)
	case KindUnchanged:
		detail = fmt.Sprintf("value %q unchanged", e.Value)
	case KindInvalidValue:
		detail = e.Value
	case KindInvalidStatus:
		detail = fmt.Sprintf("status %s", e.Status)
	case KindTransition:
		detail = fmt.Sprintf("%s -> %s", e.From, e.To)
	}
	if detail == "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Category, e.Kind, detail)
}

// Is matches another *Error acting as a template: empty Category or Kind on the
// target match anything.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Category != "" && t.Category != e.Category {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

func (e *Error) Unwrap() error { return apperrors.ErrInvalidInput }

func newError(c Category, k Kind) *Error { return &Error{Category: c, Kind: k} }

func errFormat(c Category, expected string) *Error {
	return &Error{Category: c, Kind: KindFormat, Expected: expected}
}

func errTooShort(c Category, min int) *Error {
	return &Error{Category: c, Kind: KindTooShort, Min: min}
}

func errTooLong(c Category, max int) *Error {
	return &Error{Category: c, Kind: KindTooLong, Max: max}
}

// NewUnchangedError reports an update that would not change anything.
func NewUnchangedError(c Category, value string) *Error {
	return &Error{Category: c, Kind: KindUnchanged, Value: value}
}

// NewAlreadyVerifiedError reports a second verification attempt.
func NewAlreadyVerifiedError(c Category) *Error { return newError(c, KindAlreadyVerified) }

// NewMissingError reports an absent optional value that an operation requires.
func NewMissingError(c Category) *Error { return newError(c, KindMissing) }

// NewInvalidStatusError reports an operation not allowed in the current status.
func NewInvalidStatusError(c Category, status UserStatus) *Error {
	return &Error{Category: c, Kind: KindInvalidStatus, Status: status}
}

// NewTransitionError reports a forbidden lifecycle transition.
func NewTransitionError(from, to UserStatus) *Error {
	return &Error{Category: CategoryStatus, Kind: KindTransition, From: from, To: to}
}

// NewExpiredError reports a timestamp that already lies in the past.
func NewExpiredError(c Category) *Error { return newError(c, KindExpired) }

// NewInvalidValueError reports a rule violation that has no dedicated kind.
func NewInvalidValueError(c Category, detail string) *Error {
	return &Error{Category: c, Kind: KindInvalidValue, Value: detail}
}
