package entity

import (
	"time"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// Snapshot is the flat, persistence-friendly form of a User.
type Snapshot struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailVerified    bool       `json:"email_verified"`
	PhoneCountryCode string     `json:"phone_country_code,omitempty"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	PhoneVerified    bool       `json:"phone_verified"`
	Username         string     `json:"username,omitempty"`
	ExternalID       string     `json:"external_id,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	Version          int        `json:"version"`
}

func (u *User) Snapshot() Snapshot {
	s := Snapshot{
		ID:            u.id.String(),
		Email:         u.email.String(),
		EmailVerified: u.emailVerified,
		PhoneVerified: u.phoneVerified,
		Status:        u.status.String(),
		CreatedAt:     u.createdAt.Time(),
		UpdatedAt:     u.updatedAt.Time(),
		Version:       u.version,
	}
	if u.phone != nil {
		s.PhoneCountryCode = u.phone.CountryCode()
		s.PhoneNumber = u.phone.Number()
	}
	if u.username != nil {
		s.Username = u.username.String()
	}
	if u.externalID != nil {
		s.ExternalID = u.externalID.String()
	}
	if u.deletedAt != nil {
		t := u.deletedAt.Time()
		s.DeletedAt = &t
	}
	return s
}

// Rehydrate rebuilds a stored user, running every field through its value
// object. No events are recorded.
func Rehydrate(s Snapshot) (*User, error) {
	id, err := vo.ParseUserID(s.ID)
	if err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(s.Email)
	if err != nil {
		return nil, err
	}
	status, err := vo.ParseUserStatus(s.Status)
	if err != nil {
		return nil, err
	}
	u := &User{
		id:            id,
		email:         email,
		emailVerified: s.EmailVerified,
		phoneVerified: s.PhoneVerified,
		status:        status,
		createdAt:     vo.OccurredAtFrom(s.CreatedAt),
		updatedAt:     vo.OccurredAtFrom(s.UpdatedAt),
		version:       s.Version,
	}
	if s.PhoneNumber != "" {
		p, err := vo.RestorePhone(s.PhoneCountryCode, s.PhoneNumber)
		if err != nil {
			return nil, err
		}
		u.phone = &p
	} else if s.PhoneVerified {
		return nil, vo.NewMissingError(vo.CategoryPhone)
	}
	if s.Username != "" {
		name, err := vo.NewUsername(s.Username)
		if err != nil {
			return nil, err
		}
		u.username = &name
	}
	if s.ExternalID != "" {
		x, err := vo.NewExternalID(s.ExternalID)
		if err != nil {
			return nil, err
		}
		u.externalID = &x
	}
	if s.DeletedAt != nil {
		at := vo.OccurredAtFrom(*s.DeletedAt)
		u.deletedAt = &at
	}
	if status.IsDeleted() != (u.deletedAt != nil) {
		return nil, vo.NewInvalidValueError(vo.CategoryStatus, "deleted_at must be set exactly when status is deleted")
	}
	return u, nil
}
