package valueobject

// UserStatus is the lifecycle state of a user.
type UserStatus string

const (
	StatusPending   UserStatus = "pending"
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusDeleted   UserStatus = "deleted"
)

var UserStatuses = []UserStatus{StatusPending, StatusActive, StatusSuspended, StatusDeleted}

func ParseUserStatus(raw string) (UserStatus, error) {
	return parseEnum(CategoryStatus, raw, UserStatuses)
}

func (s UserStatus) String() string { return string(s) }

func (s UserStatus) IsPending() bool   { return s == StatusPending }
func (s UserStatus) IsActive() bool    { return s == StatusActive }
func (s UserStatus) IsSuspended() bool { return s == StatusSuspended }
func (s UserStatus) IsDeleted() bool   { return s == StatusDeleted }

// CanTransitionTo encodes Pending -> Active <-> Suspended, and any live state -> Deleted.
func (s UserStatus) CanTransitionTo(next UserStatus) bool {
	switch next {
	case StatusActive:
		return s == StatusPending || s == StatusSuspended
	case StatusSuspended:
		return s == StatusActive
	case StatusDeleted:
		return s == StatusPending || s == StatusActive || s == StatusSuspended
	default:
		return false
	}
}
